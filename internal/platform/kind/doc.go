// Package kind wraps the kind CLI: listing, creating and deleting clusters.
package kind
