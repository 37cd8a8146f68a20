// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: Book listing, search and stats (internal/http/stores.go)
//   - CoverBookStore: Minimal book lookup for cover serving (internal/http/stores.go)
//   - ShelfStore: Shelf management (internal/http/stores.go)
//   - KoboStore: Kobo device and sync access (internal/http/stores.go)
//
// ## Settings Interfaces
//
//   - RemoteStorageSettings: Runtime remote cover storage config (internal/http/covers.go)
//   - CleanupStatusRecorder: Cleanup run outcome persistence (internal/tasks/cleanup_covers.go)
//
// ## Background Task Interfaces
//
//   - BookUUIDLister: Live book UUIDs for cache cleanup (internal/tasks/cleanup_covers.go)
//   - CoverCacheCleaner: Cache eviction (internal/tasks/cleanup_covers.go)
//   - CoveredBookLister: Books with covers for cache warming (internal/tasks/warm_covers.go)
//   - CoverFetcher: Cover download and caching (internal/tasks/warm_covers.go)
//
// # Adding a New Storage Provider
//
// To serve covers from a new remote host (e.g., S3-compatible storage):
//
//  1. Implement storage.Client in internal/storage/providers/
//
//     type S3Client struct {
//         bucket string
//     }
//
//     func (c *S3Client) GetMetadata(ctx context.Context, path string) (*storage.FileInfo, error)
//     func (c *S3Client) Download(ctx context.Context, path string) (io.ReadCloser, error)
//     func (c *S3Client) Exists(ctx context.Context, path string) (bool, error)
//
//     var _ storage.Client = (*S3Client)(nil)
//
//  2. Construct it in entrypoint.go based on configuration
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full set.
package interfaces
