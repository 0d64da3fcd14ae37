// Package httpsource reads preload responses from the variant report server.
//
// One request per (technology, key) returns every zygosity slice at once:
//
//	GET /get_patients?unique_key=<key>&preload=true                 (short-read)
//	GET /get_patients_longread_ajax?variant_id=<key>&preload=true   (long-read)
//
// Decode fills in anything the server leaves out, so callers always receive
// an Entry with all three filters.
package httpsource
