// Package builtin provides the dynamic value generators behind {{$name}}
// placeholders.
//
// Two closed tables are consulted in order:
//   - aliases: flat names such as guid, timestamp, isoTimestamp, randomInt,
//     randomEmail, randomFirstName, randomCity, randomLoremSentence
//   - namespace: dotted "group.member" paths such as person.firstName,
//     internet.email, location.city, finance.amount
//
// Every call generates a fresh value; nothing is cached, so two occurrences
// of the same placeholder in one string get different values.
package builtin
