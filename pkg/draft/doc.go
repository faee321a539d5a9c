// Package draft persists intake progress against a stable draft identity.
//
// Hydrate and Export translate between the backend Record and the display
// form kept in model.FormState. Manager decides between create and update on
// each commit, caches the identity through an IdentityStore, and reports
// transport failures as *CommitError values that wrap ErrTransport. Backends
// and identity stores are injected: MemoryBackend, MemoryStore and FileStore
// live here, while the redisstore and httpbackend subpackages provide the
// networked variants.
package draft
