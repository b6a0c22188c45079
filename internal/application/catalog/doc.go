// Package catalog implements the mod catalog: filtered listing, CRUD,
// likes, aggregate stats and full import/export.
//
// The Service is the only component that mutates the store. Every mutation
// is followed by an activity event on the EventBus and a metrics update.
package catalog
