// Package io provides the devices attached to the Duck Machine.
//
// The Console is mapped into main memory: reading its input address
// reads an integer typed by the user, writing its output address prints
// the value. Image holds an object program as a list of words, one per
// line of text.
package io
