package ingest

// Chunk is one slice of extracted material text, addressed by its position
// within the source document.
type Chunk struct {
	ChunkIndex int32
	PageIndex  int32
	Content    string
}
