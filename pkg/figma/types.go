package figma

// FileResponse represents the response from the Figma file API endpoint.
// Only the document tree and the file metadata needed by the importer are decoded.
type FileResponse struct {
	Name          string `json:"name"`
	LastModified  string `json:"lastModified"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	Version       string `json:"version"`
	Document      Node   `json:"document"`
	SchemaVersion int    `json:"schemaVersion"`
}

// ImagesResponse represents the response from the Figma image render endpoint.
// Images maps each requested node ID to a temporary download URL. A node that
// could not be rendered maps to null (decoded as an empty string) or is missing.
type ImagesResponse struct {
	Err    string            `json:"err,omitempty"`
	Status int               `json:"status,omitempty"`
	Images map[string]string `json:"images"`
}

// Node represents a single element in the Figma document tree hierarchy.
// The JSON field names mirror the Figma REST API verbatim.
type Node struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Type                string     `json:"type"`
	AbsoluteBoundingBox *Rectangle `json:"absoluteBoundingBox,omitempty"`
	Children            []Node     `json:"children,omitempty"`
}

// Node types the importer cares about.
const (
	TypeDocument         = "DOCUMENT"
	TypeCanvas           = "CANVAS"
	TypeFrame            = "FRAME"
	TypeGroup            = "GROUP"
	TypeBooleanOperation = "BOOLEAN_OPERATION"
	TypeSlice            = "SLICE"
	TypeRectangle        = "RECTANGLE"
	TypeText             = "TEXT"
)

// HasBounds reports whether the node carries an absolute bounding box.
func (n *Node) HasBounds() bool {
	return n != nil && n.AbsoluteBoundingBox != nil
}

// Rectangle represents a bounding box with position (X, Y) and dimensions (Width, Height).
// Coordinates are absolute canvas coordinates with the origin at the top-left and Y growing downward.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
