package di

import (
	"angelupdate/internal/packaging"
	"angelupdate/internal/store"
)

// provideContentLocator narrows the content store to the locator view the
// package builder needs.
func provideContentLocator(s store.ContentStoreInterface) packaging.ContentLocator {
	return s
}
