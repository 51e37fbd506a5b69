// Package types defines the project aggregate, its entity types, the Store
// and Table interfaces that storage backends implement, and the standard
// error values shared by the editor, reconciler, and backends.
package types
