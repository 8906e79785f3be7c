// internal/app/system/csvutil/limits.go
package csvutil

// MaxRows bounds a single CSV export.
const MaxRows = 20000
