package imager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hellenic-development/figma-import/pkg/figma"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	mu     sync.Mutex
	calls  int
	ids    [][]string
	format string
	scale  float64
	images map[string]string
	err    error
}

func (f *fakeExporter) GetImages(_ context.Context, _ string, ids []string, format string, scale float64) (*figma.ImagesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ids = append(f.ids, ids)
	f.format, f.scale = format, scale
	if f.err != nil {
		return nil, f.err
	}
	return &figma.ImagesResponse{Images: f.images}, nil
}

type fakeDownloader struct {
	fail  map[string]bool
	delay map[string]time.Duration
	after func() // runs after every successful download
}

func (f *fakeDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d := f.delay[url]; d > 0 {
		time.Sleep(d)
	}
	if f.fail[url] {
		return nil, fmt.Errorf("status 500 for %s", url)
	}
	if f.after != nil {
		f.after()
	}
	return []byte("data:" + url), nil
}

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memStore) Save(key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[key] = data
	return "mem/" + key, nil
}

func nodes(ids ...string) []*figma.Node {
	out := make([]*figma.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, &figma.Node{ID: id, Type: figma.TypeRectangle, AbsoluteBoundingBox: &figma.Rectangle{Width: 1, Height: 1}})
	}
	return out
}

func TestResolveSingleBatchedRequest(t *testing.T) {
	exp := &fakeExporter{images: map[string]string{
		"1:2": "u2",
		"1:3": "",
		"1:4": "u4",
		"1:5": "u5",
	}}
	store := &memStore{}

	result, err := Resolve(context.Background(), exp, &fakeDownloader{}, store, "KEY", nodes("1:2", "1:3", "1:4", "1:5", "1:6"), ExportConfig{})
	require.NoError(t, err)

	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, []string{"1:2", "1:3", "1:4", "1:5", "1:6"}, exp.ids[0])
	assert.Equal(t, "png", exp.format)
	assert.Equal(t, 2.0, exp.scale)

	// 5 nodes, 2 without URLs (one empty, one missing from the response).
	assert.Len(t, result.Images, 3)
	assert.Equal(t, "mem/1_2.png", result.Images["1:2"])
	assert.Equal(t, []byte("data:u4"), store.files["1_4.png"])

	require.Len(t, result.Misses, 2)
	assert.Equal(t, "1:3", result.Misses[0].NodeID)
	assert.Equal(t, "1:6", result.Misses[1].NodeID)
	assert.ErrorIs(t, result.Misses[0], ErrNoImageURL)
}

func TestResolveIsolatesDownloadFailures(t *testing.T) {
	exp := &fakeExporter{images: map[string]string{"a": "ua", "b": "ub", "c": "uc"}}
	dl := &fakeDownloader{
		fail:  map[string]bool{"ub": true},
		delay: map[string]time.Duration{"ua": 20 * time.Millisecond},
	}

	result, err := Resolve(context.Background(), exp, dl, &memStore{}, "KEY", nodes("a", "b", "c"), ExportConfig{Concurrency: 3})
	require.NoError(t, err)

	_, okA := result.Resolved("a")
	_, okB := result.Resolved("b")
	_, okC := result.Resolved("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)

	require.Len(t, result.Misses, 1)
	assert.Equal(t, "b", result.Misses[0].NodeID)
	assert.Contains(t, result.Misses[0].Error(), "failed to download image")
}

func TestResolveStoreFailureIsAMiss(t *testing.T) {
	exp := &fakeExporter{images: map[string]string{"1:1": "u1"}}
	store := NewFileStore(filepath.Join(t.TempDir(), "file-not-dir"))
	require.NoError(t, os.WriteFile(store.Dir, []byte("x"), 0644))

	result, err := Resolve(context.Background(), exp, &fakeDownloader{}, store, "KEY", nodes("1:1"), ExportConfig{})
	require.NoError(t, err)
	assert.Empty(t, result.Images)
	require.Len(t, result.Misses, 1)
	assert.Contains(t, result.Misses[0].Error(), "failed to store image")
}

func TestResolveExportFailure(t *testing.T) {
	exp := &fakeExporter{err: errors.New("403 forbidden")}

	_, err := Resolve(context.Background(), exp, &fakeDownloader{}, &memStore{}, "KEY", nodes("1:1"), ExportConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403 forbidden")
}

func TestResolveNoNodes(t *testing.T) {
	exp := &fakeExporter{}

	result, err := Resolve(context.Background(), exp, &fakeDownloader{}, &memStore{}, "KEY", nil, ExportConfig{})
	require.NoError(t, err)
	assert.Empty(t, result.Images)
	assert.Zero(t, exp.calls)
}

func TestResolveCustomFormatAndScale(t *testing.T) {
	exp := &fakeExporter{images: map[string]string{"1:1": "u1"}}
	store := &memStore{}

	_, err := Resolve(context.Background(), exp, &fakeDownloader{}, store, "KEY", nodes("1:1"), ExportConfig{Format: "jpg", Scale: 3, RateLimit: 100})
	require.NoError(t, err)
	assert.Equal(t, "jpg", exp.format)
	assert.Equal(t, 3.0, exp.scale)
	assert.Contains(t, store.files, "1_1.jpg")
}

func TestResolveCanceledContext(t *testing.T) {
	exp := &fakeExporter{images: map[string]string{"1:1": "u1"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Resolve(ctx, exp, &fakeDownloader{}, &memStore{}, "KEY", nodes("1:1"), ExportConfig{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveCancelAfterAllDownloads(t *testing.T) {
	exp := &fakeExporter{images: map[string]string{"1:1": "u1", "1:2": "u2"}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		done int
	)
	dl := &fakeDownloader{after: func() {
		mu.Lock()
		defer mu.Unlock()
		if done++; done == 2 {
			cancel()
		}
	}}

	res, err := Resolve(ctx, exp, dl, &memStore{}, "KEY", nodes("1:1", "1:2"), ExportConfig{Concurrency: 1})
	require.NoError(t, err)
	assert.Len(t, res.Images, 2)
	assert.Empty(t, res.Misses)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		id, format, want string
	}{
		{"12:345", "png", "12_345.png"},
		{"I1:2;3:4", "PNG", "I1_2;3_4.png"},
		{"plain", "jpg", "plain.jpg"},
		{"a/b", "png", "a_b.png"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.id, tt.format))
	}
}

func TestFileStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Assets", "FigmaImages")
	store := NewFileStore(dir)

	ref, err := store.Save("1_2.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "1_2.png")), ref)

	data, err := os.ReadFile(filepath.Join(dir, "1_2.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	_, err = store.Save("../escape.png", []byte("x"))
	assert.Error(t, err)

	assert.Equal(t, DefaultDir, NewFileStore("").Dir)
}
