/*
Package domain contains the core types shared by every Arbor package.

It is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Snapshot: the serializable view of a layout (template, data, regions).
  - Error taxonomy: ArgumentError, TemplateNotFoundError, UnrenderedStateError
    and the sentinel errors returned by the controller and reactive runtime.
  - LifecycleHooks: callbacks fired when views render, lookups fail or a
    flush completes.
*/
package domain
