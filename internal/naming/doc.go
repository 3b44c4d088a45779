// Package naming turns a source document into a uniquely named copy in the
// drop folder.
//
// The destination name is derived from a filename classification (invoice,
// purchase order, order confirmation) and a local timestamp with microsecond
// resolution:
//
//	Faktura-20250314-101502-004211.pdf
//
// Uniqueness comes from the name itself. The engine hands out strictly
// increasing microsecond stamps, so it never depends on the OS appending
// "(1)", "(2)" to colliding names, and destinations are created with O_EXCL so
// an existing file is never overwritten.
package naming
