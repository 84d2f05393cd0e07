package deploy

import "fmt"

// =============================================================================
// Resource Naming Functions
// =============================================================================

// ServiceName derives the cluster service name for a unit.
// Pattern: {project}-{name}-service
//
// Example:
//
//	ServiceName("acme", "web") // returns "acme-web-service"
func ServiceName(project, name string) string {
	return fmt.Sprintf("%s-%s-service", project, name)
}

// ImageName derives the image repository name for an app.
// Pattern: {project}-{name}-image
//
// Example:
//
//	ImageName("acme", "web") // returns "acme-web-image"
func ImageName(project, name string) string {
	return fmt.Sprintf("%s-%s-image", project, name)
}

// ImageTag derives the full image tag for an app built at a given unix time.
// Pattern: {project}-{name}-image:{unixSeconds}
//
// Example:
//
//	ImageTag("acme", "web", 1700000000) // returns "acme-web-image:1700000000"
func ImageTag(project, name string, unixSeconds int64) string {
	return fmt.Sprintf("%s:%d", ImageName(project, name), unixSeconds)
}

// VolumeName derives the named volume for a db unit's data directory.
// Pattern: {project}-{name}-volume
//
// Example:
//
//	VolumeName("acme", "pg") // returns "acme-pg-volume"
func VolumeName(project, name string) string {
	return fmt.Sprintf("%s-%s-volume", project, name)
}
