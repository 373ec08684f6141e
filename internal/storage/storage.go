// Package storage provides the durable document store: named JSON documents
// that survive process restarts. Each logical collection (groups, events,
// notifications, settings) is one document, written whole on every mutation.
package storage

// Document names used by the application.
const (
	DocGroups        = "groups"
	DocEvents        = "events"
	DocNotifications = "notifications"
	DocSettings      = "notificationSettings"
	DocSubscriptions = "pushSubscriptions"
	DocAppInstalled  = "appInstalled"
)

// DocumentStore persists named JSON documents. Absent documents are not an
// error: Read reports found=false and leaves v untouched, so callers fall
// back to empty/default state.
type DocumentStore interface {
	// Read unmarshals the named document into v. found is false when the
	// document has never been written.
	Read(name string, v any) (found bool, err error)

	// Write marshals v and replaces the named document.
	Write(name string, v any) error

	// Names lists every document currently stored.
	Names() ([]string, error)

	Close() error
}
