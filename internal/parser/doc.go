// Package parser derives predicate trees from operation identifiers such as
// findByLastnameOrFirstnameLikeOrderByFirstnameDesc.
//
// An identifier is a configured prefix followed by a subject and an
// optional ordering clause:
//
//	findBy  Lastname Or FirstnameLike  OrderBy FirstnameDesc
//	prefix  └──────── subject ───────┘ └─── order clause ──┘
//
// The subject is segmented on camel-case boundaries and split on the And
// and Or keywords strictly left to right; no precedence is applied, so
// findByAOrBAndC means ((A or B) and C). Each segment may end in a
// comparison keyword (Like, NotLike, Not, IsNull, LessThan, ...); the rest
// of the segment is resolved against the entity's property graph by greedy
// longest match, so AddressCity resolves to address.city when the entity
// has no addressCity property.
package parser
