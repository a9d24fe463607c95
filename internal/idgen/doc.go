// Package idgen builds request identifiers from a form prefix and the
// submission time. It is wrapped behind an interface so tests can stub it;
// callers should treat identifiers as opaque strings.
package idgen
