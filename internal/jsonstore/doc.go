// Package jsonstore provides a generic single-table store persisted as one
// flat JSON file.
//
// # Overview
//
// A [Store] owns one file holding a JSON array of rows. Every mutation loads
// the whole array, changes it in memory and rewrites the whole file. There is
// no cache: the file is the only state, so several processes reading the
// same directory see each other's completed writes.
//
// # Concurrency
//
// Each Store has one gate (a mutex). [Store.Add], [Store.Update],
// [Store.Delete], [Store.Patch] and [Store.Exists] hold it for their entire
// read-modify-write cycle. [Store.Get] and [Store.All] do not take it and may
// observe the table before or after a concurrent mutation. Writes go to a
// temporary file that is renamed over the table file, so a reader never sees
// a partially written array.
//
// Gates are per table. No operation holds two gates, so there is no lock
// ordering to get wrong.
//
// # Identifiers
//
// Rows carry positive integer ids assigned by the store: the next id is the
// largest id present plus one. Ids supplied by the caller on Add are ignored.
//
// # File Format
//
// A JSON array of objects, indented with two spaces. A missing or zero-byte
// file is an empty table.
package jsonstore
