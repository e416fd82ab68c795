// Package grampsxml serializes a finished entity graph as a Gramps XML
// 1.7.1 database document.
package grampsxml
