// Package parser turns a level feed CSV body into price levels.
//
// Feed format, one level per line:
//
//	<price>,<label>,<color>
//
// A line shorter than MinLineLength marks the end of data. A bad price aborts
// the whole body; a bad color only defaults that row to gray.
package parser
