package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	metadataFile = "metadata.json"
	imageFile    = "image.png"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RenderMetadata struct {
	ID             string    `json:"id"`
	Fractal        string    `json:"fractal"`
	FractalID      int       `json:"fractal_id"`
	Iterations     int       `json:"iterations"`
	Timestamp      time.Time `json:"timestamp"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	ColorStart     string    `json:"color_start"`
	ColorEnd       string    `json:"color_end"`
	SequenceLength int       `json:"sequence_length"`
	Segments       int       `json:"segments"`
	Recolored      int       `json:"recolored"`
	ElapsedMs      float64   `json:"elapsed_ms"`
}

// Save writes meta and the image produced by encode into a new render directory.
func (s *Store) Save(meta RenderMetadata, encode func(io.Writer) error) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	renderID := fmt.Sprintf("%s_%d", meta.Fractal, meta.Timestamp.UnixNano())
	renderDir := filepath.Join(s.baseDir, renderID)
	meta.ID = renderID

	if err := os.MkdirAll(renderDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(renderDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if encode == nil {
		return renderID, nil
	}

	imgFile, err := os.Create(filepath.Join(renderDir, imageFile))
	if err != nil {
		return "", err
	}
	defer imgFile.Close()

	if err := encode(imgFile); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return renderID, nil
}

// List returns every stored render, oldest first.
func (s *Store) List() ([]RenderMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RenderMetadata{}, nil
		}
		return nil, err
	}

	renders := make([]RenderMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		renders = append(renders, *meta)
	}

	sort.Slice(renders, func(i, j int) bool {
		return renders[i].Timestamp.Before(renders[j].Timestamp)
	})
	return renders, nil
}

func (s *Store) Load(renderID string) (*RenderMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, renderID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RenderMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// ImagePath returns where the image of renderID is stored.
func (s *Store) ImagePath(renderID string) string {
	return filepath.Join(s.baseDir, renderID, imageFile)
}
