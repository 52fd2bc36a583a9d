// Package harness runs YAML query scenarios end to end.
//
// A scenario names a CUE schema directory, seeds fixture records, then runs
// steps against a fresh in-memory SQLite store. Each step either invokes a
// declared repository operation or evaluates a where tree through FindAll,
// and its expectations are checked against the records returned:
//
//	name: by_lastname
//	description: matthews in age order
//	schema: ../schema
//	fixtures:
//	  User:
//	    - {id: u1, lastname: Matthews, age: 50}
//	steps:
//	  - entity: User
//	    op: findByLastnameOrderByAgeAsc
//	    args: [Matthews]
//	    expect:
//	      ids: [u1]
//
// Run returns a Result with one trace entry per step; RunWithGolden
// compares that trace against testdata/golden/<name>.golden.
package harness
