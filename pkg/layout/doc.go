/*
Package layout implements the reactive layout controller.

A Controller owns a top-level template name, an optional data context and a
set of named regions. Rendering it mounts the chosen template; templates
call yield to render a region and contentFor to fill one with a locally
defined block. Every input is reactive: changing the template reruns only
the root, changing a region reruns only the yields that read it, and
changing data refreshes the template bodies that read it without
recreating any view.

Names are resolved in a fixed order: content blocks registered with
contentFor, then properties of the enclosing scopes, then the global
template registry, then global helpers.
*/
package layout
