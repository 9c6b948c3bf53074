/*
Package ports defines the driven ports (interfaces) of the editor.

These interfaces decouple the editing core from external implementations,
so pages can be kept in memory, on disk, in Redis, in a Loam vault or in a
SQL database without the core knowing which.

# Key Interfaces

  - PageStore: persists page documents by page id.

RunPageStoreContract is the shared test suite every PageStore adapter runs.
*/
package ports
