package services

import "versegraph/domain/core/entities"

// Presentation edge categories
const (
	PresentationContains       = "contains"
	PresentationThemeLink      = "theme_connection"
	PresentationAuthored       = "authored"
	PresentationCrossReference = "cross_reference"
)

var edgeTypeMap = map[string]string{
	string(entities.EdgeTypeReferences):      PresentationContains,
	string(entities.EdgeTypeThemeConnection): PresentationThemeLink,
	string(entities.EdgeTypeMentions):        PresentationAuthored,
	string(entities.EdgeTypeCrossRef):        PresentationCrossReference,
}

// MapEdgeType translates a storage edge type to its presentation category.
// Unknown types pass through unchanged.
func MapEdgeType(storageType string) string {
	if mapped, ok := edgeTypeMap[storageType]; ok {
		return mapped
	}
	return storageType
}
