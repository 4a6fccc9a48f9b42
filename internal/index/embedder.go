// Package index builds and persists the similarity-searchable store of
// marking points: a sentence-embedding step, a flat inner-product index
// over unit-normalized vectors, and the JSONL point/metadata artifacts
// that map index rows back to scheme points.
//
// Retrieval is built and independently testable, but the scoring path does
// an exact question-id lookup against the metadata; the vector index is a
// persisted artifact for interactive and future use.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Embedder errors.
var (
	// ErrEmbedderClosed indicates use after Close.
	ErrEmbedderClosed = errors.New("embedder is closed")

	// ErrNoTexts indicates an embedding call with an empty text list.
	// Embedding nothing must fail loudly rather than produce a
	// zero-dimension index.
	ErrNoTexts = errors.New("no texts to embed")
)

// Embedder produces fixed-dimension sentence embeddings. Implementations
// are expensive to construct and must be created once per process and
// reused; they are safe for sequential reuse across calls.
type Embedder interface {
	// EmbedTexts embeds each text into a unit-normalized vector. It fails
	// on an empty input list.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Dim returns the embedding dimension, or 0 before the first call.
	Dim() int

	Close() error
}

// OrtConfig configures the ONNX Runtime sentence embedder.
type OrtConfig struct {
	// LibraryPath points at the onnxruntime shared library. Empty uses
	// the platform default search path.
	LibraryPath string

	// ModelPath is the exported sentence-transformer ONNX model.
	ModelPath string

	// TokenizerPath is the matching HuggingFace tokenizer.json.
	TokenizerPath string

	// MaxSeqLen truncates tokenized input. Defaults to 256.
	MaxSeqLen int
}

// OrtEmbedder runs a sentence-transformer ONNX model locally and
// mean-pools token states into one unit vector per text.
type OrtEmbedder struct {
	mu      sync.Mutex
	tk      *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession
	maxSeq  int
	dim     int
	closed  bool
}

// NewOrtEmbedder initializes the ONNX Runtime environment, loads the
// tokenizer, and opens an inference session. The returned embedder holds
// native resources; callers own exactly one per process and must Close it.
func NewOrtEmbedder(cfg OrtConfig) (*OrtEmbedder, error) {
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 256
	}
	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", cfg.TokenizerPath, err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("open embedding session %s: %w", cfg.ModelPath, err)
	}

	return &OrtEmbedder{tk: tk, session: session, maxSeq: cfg.MaxSeqLen}, nil
}

// EmbedTexts implements Embedder. Texts are embedded one at a time; the
// pipeline is sequential and the batch sizes here are small.
func (e *OrtEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrNoTexts
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEmbedderClosed
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.embedOne(text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// Dim implements Embedder.
func (e *OrtEmbedder) Dim() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dim
}

// Close releases the inference session. Safe to call more than once.
func (e *OrtEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.session.Destroy()
}

func (e *OrtEmbedder) embedOne(text string) ([]float32, error) {
	enc, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	ids := enc.Ids
	mask := enc.AttentionMask
	types := enc.TypeIds
	if len(ids) > e.maxSeq {
		ids = ids[:e.maxSeq]
		mask = mask[:e.maxSeq]
		types = types[:e.maxSeq]
	}
	n := int64(len(ids))
	if n == 0 {
		return nil, fmt.Errorf("tokenizer produced no tokens")
	}

	shape := ort.NewShape(1, n)
	idsT, err := ort.NewTensor(shape, toInt64(ids))
	if err != nil {
		return nil, err
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(shape, toInt64(mask))
	if err != nil {
		return nil, err
	}
	defer maskT.Destroy()
	typesT, err := ort.NewTensor(shape, toInt64(types))
	if err != nil {
		return nil, err
	}
	defer typesT.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{idsT, maskT, typesT}, outputs); err != nil {
		return nil, fmt.Errorf("run embedding model: %w", err)
	}
	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	defer hidden.Destroy()

	dims := hidden.GetShape()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	seqLen, hiddenDim := int(dims[1]), int(dims[2])
	vec := meanPool(hidden.GetData(), mask, seqLen, hiddenDim)
	NormalizeL2(vec)

	if e.dim == 0 {
		e.dim = hiddenDim
	}
	return vec, nil
}

// meanPool averages token states weighted by the attention mask.
func meanPool(data []float32, mask []int, seqLen, hiddenDim int) []float32 {
	vec := make([]float32, hiddenDim)
	var count float32
	for t := 0; t < seqLen; t++ {
		if t < len(mask) && mask[t] == 0 {
			continue
		}
		count++
		row := data[t*hiddenDim : (t+1)*hiddenDim]
		for j, v := range row {
			vec[j] += v
		}
	}
	if count > 0 {
		for j := range vec {
			vec[j] /= count
		}
	}
	return vec
}

// NormalizeL2 scales the vector to unit length in place. Zero vectors are
// left untouched.
func NormalizeL2(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}

func toInt64(xs []int) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}
