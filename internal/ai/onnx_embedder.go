package ai

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"studyassist/internal/rag"
)

// onnxSeqLen fixes the tokenized sequence length fed to the model. Chunks are
// bounded well below this in characters, so truncation is rare.
const onnxSeqLen = 256

// ONNXEmbedder runs a local MiniLM-style sentence-embedding model through
// onnxruntime. The session is loaded lazily on the first Embed call so a
// missing model file degrades the retrieval pipeline instead of failing
// startup.
type ONNXEmbedder struct {
	mu sync.Mutex

	modelPath string
	vocabPath string
	libPath   string
	dimension int

	tokenizer *wordpieceTokenizer
	session   *ort.AdvancedSession
	inputIDs  *ort.Tensor[int64]
	attnMask  *ort.Tensor[int64]
	typeIDs   *ort.Tensor[int64]
	output    *ort.Tensor[float32]
	inited    bool
	initErr   error
}

func NewONNXEmbedder(modelPath, vocabPath, libPath string, dimension int) *ONNXEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &ONNXEmbedder{
		modelPath: modelPath,
		vocabPath: vocabPath,
		libPath:   libPath,
		dimension: dimension,
	}
}

func (e *ONNXEmbedder) Dimension() int { return e.dimension }

// initOnce loads the shared library, vocabulary and session. A failed init is
// sticky; retrying on every call would hammer the filesystem for a model that
// is not there.
func (e *ONNXEmbedder) initOnce() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inited {
		return e.initErr
	}
	e.inited = true
	e.initErr = e.initLocked()
	return e.initErr
}

func (e *ONNXEmbedder) initLocked() error {
	tokenizer, err := newWordpieceTokenizer(e.vocabPath)
	if err != nil {
		return fmt.Errorf("onnx tokenizer: %w", err)
	}
	e.tokenizer = tokenizer

	if e.libPath != "" {
		ort.SetSharedLibraryPath(e.libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnx init environment: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(e.modelPath)
	if err != nil {
		return fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) < 2 || len(outputs) == 0 {
		return fmt.Errorf("onnx model has unexpected input/output count")
	}

	shape := ort.NewShape(1, onnxSeqLen)
	if e.inputIDs, err = ort.NewEmptyTensor[int64](shape); err != nil {
		return fmt.Errorf("onnx new input_ids tensor: %w", err)
	}
	if e.attnMask, err = ort.NewEmptyTensor[int64](shape); err != nil {
		return fmt.Errorf("onnx new attention_mask tensor: %w", err)
	}

	inputNames := make([]string, len(inputs))
	inputValues := make([]ort.Value, 0, len(inputs))
	for i := range inputs {
		inputNames[i] = inputs[i].Name
	}
	inputValues = append(inputValues, e.inputIDs, e.attnMask)

	// Some exports carry a third token_type_ids input.
	if len(inputs) >= 3 {
		if e.typeIDs, err = ort.NewEmptyTensor[int64](shape); err != nil {
			return fmt.Errorf("onnx new token_type_ids tensor: %w", err)
		}
		inputValues = append(inputValues, e.typeIDs)
	}

	outShape := ort.NewShape(1, onnxSeqLen, int64(e.dimension))
	if e.output, err = ort.NewEmptyTensor[float32](outShape); err != nil {
		return fmt.Errorf("onnx new output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(e.modelPath, inputNames, []string{outputs[0].Name},
		inputValues, []ort.Value{e.output}, nil)
	if err != nil {
		return fmt.Errorf("onnx new session: %w", err)
	}
	e.session = session
	return nil
}

func (e *ONNXEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.initOnce(); err != nil {
		return nil, fmt.Errorf("%w: %v", rag.ErrEmbeddingUnavailable, err)
	}

	result := make([][]float32, 0, len(texts))
	for _, text := range texts {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", rag.ErrEmbeddingUnavailable, ctx.Err())
		default:
		}

		vec, err := e.embedOne(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rag.ErrEmbeddingUnavailable, err)
		}
		result = append(result, vec)
	}
	return result, nil
}

func (e *ONNXEmbedder) embedOne(text string) ([]float32, error) {
	ids, mask := e.tokenizer.Encode(text, onnxSeqLen)

	e.mu.Lock()
	defer e.mu.Unlock()

	copy(e.inputIDs.GetData(), ids)
	copy(e.attnMask.GetData(), mask)
	if e.typeIDs != nil {
		typeData := e.typeIDs.GetData()
		for i := range typeData {
			typeData[i] = 0
		}
	}

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	// Mean-pool token states over the attention mask, then unit-normalize.
	hidden := e.output.GetData()
	pooled := make([]float32, e.dimension)
	var tokens float32
	for pos := 0; pos < onnxSeqLen; pos++ {
		if mask[pos] == 0 {
			continue
		}
		tokens++
		base := pos * e.dimension
		for d := 0; d < e.dimension; d++ {
			pooled[d] += hidden[base+d]
		}
	}
	if tokens == 0 {
		return pooled, nil
	}
	for d := range pooled {
		pooled[d] /= tokens
	}
	return normalizeVector(pooled), nil
}

// Close releases the session and tensors.
func (e *ONNXEmbedder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{e.inputIDs, e.attnMask, e.typeIDs} {
		if t != nil {
			t.Destroy()
		}
	}
	if e.output != nil {
		e.output.Destroy()
	}
}

var _ rag.Embedder = (*ONNXEmbedder)(nil)
