/*
Package ports defines the driven ports (interfaces) of the layout manager.

These interfaces decouple the layout core from external implementations, so
templates and saved layout state can live in memory, on disk, in a Loam
vault or in Redis.

# Key Interfaces

  - TemplateSource / HelperSource: name lookups consulted by the resolver.
  - TemplateLoader: lazily supplies template documents to the registry.
  - SnapshotStore: persists layout snapshots.
  - DistributedLocker: serializes snapshot writes across replicas.
*/
package ports
