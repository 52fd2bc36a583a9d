// Package schema loads entity and repository declarations written in CUE.
//
// A schema directory holds one CUE package with two top-level structs:
//
//	entity: User: {
//		table: "users"
//		properties: {
//			lastname: "string"
//			address: {city: "string"}
//		}
//	}
//	repository: User: {
//		findByLastname: [{type: "string"}]
//		findByFirstname: {args: [{type: "string"}], result: "single"}
//	}
//
// Property values are kind names ("string", "int", "bool", "float",
// "time") or nested structs. A repository operation is either a list of
// argument declarations or a struct with args and result.
package schema
