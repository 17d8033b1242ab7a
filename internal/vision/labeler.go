package vision

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"sort"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ImageNet normalization (standard for torchvision models).
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

const (
	inputWidth  = 224
	inputHeight = 224
)

// LabelScore holds a class label and its score (logit).
type LabelScore struct {
	Label string  `json:"label"`
	Index int     `json:"index"`
	Score float32 `json:"score"`
}

// Labeler runs a local MobileNetV2 ONNX model over an uploaded image and
// turns the top-k class labels into text. Image uploads carry no extractable
// text of their own (OCR is out of scope), so this label text is what gets
// chunked and embedded for an image document.
type Labeler struct {
	mu sync.Mutex

	modelPath  string
	labelsPath string
	topK       int
	libPath    string

	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	labels  []string
	inited  bool
}

// NewLabeler creates a labeler that lazily loads the ONNX model and labels
// on first use.
func NewLabeler(modelPath, labelsPath, onnxLibPath string, topK int) *Labeler {
	if topK <= 0 {
		topK = 5
	}
	return &Labeler{
		modelPath:  modelPath,
		labelsPath: labelsPath,
		topK:       topK,
		libPath:    onnxLibPath,
	}
}

func (l *Labeler) initOnce() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inited {
		return nil
	}

	if l.libPath != "" {
		ort.SetSharedLibraryPath(l.libPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnx init environment: %w", err)
	}

	labels, err := loadLabels(l.labelsPath)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}
	l.labels = labels

	inputs, outputs, err := ort.GetInputOutputInfo(l.modelPath)
	if err != nil {
		return fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("onnx model has no inputs or outputs")
	}

	inputTensor, err := ort.NewEmptyTensor[float32](inputs[0].Dimensions)
	if err != nil {
		return fmt.Errorf("onnx new input tensor: %w", err)
	}
	l.input = inputTensor

	outputTensor, err := ort.NewEmptyTensor[float32](outputs[0].Dimensions)
	if err != nil {
		inputTensor.Destroy()
		return fmt.Errorf("onnx new output tensor: %w", err)
	}
	l.output = outputTensor

	inputNames := make([]string, len(inputs))
	for i := range inputs {
		inputNames[i] = inputs[i].Name
	}
	outputNames := make([]string, len(outputs))
	for i := range outputs {
		outputNames[i] = outputs[i].Name
	}

	session, err := ort.NewAdvancedSession(l.modelPath, inputNames, outputNames,
		[]ort.Value{l.input}, []ort.Value{l.output}, nil)
	if err != nil {
		outputTensor.Destroy()
		inputTensor.Destroy()
		return fmt.Errorf("onnx new session: %w", err)
	}
	l.session = session
	l.inited = true
	return nil
}

func loadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		labels = append(labels, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

// Label decodes the image, runs inference and returns the top-k label scores.
func (l *Labeler) Label(imageData []byte) ([]LabelScore, error) {
	if err := l.initOnce(); err != nil {
		return nil, err
	}

	img, err := decodeImage(imageData)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	inputData := preprocess(img)

	l.mu.Lock()
	inData := l.input.GetData()
	if len(inData) < len(inputData) {
		l.mu.Unlock()
		return nil, fmt.Errorf("input tensor size %d < preprocessed %d", len(inData), len(inputData))
	}
	copy(inData, inputData)
	err = l.session.Run()
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	outData := l.output.GetData()
	k := l.topK
	if k > len(l.labels) {
		k = len(l.labels)
	}
	if k > len(outData) {
		k = len(outData)
	}

	type idxScore struct {
		idx   int
		score float32
	}
	scored := make([]idxScore, len(outData))
	for i, s := range outData {
		scored[i] = idxScore{i, s}
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	result := make([]LabelScore, 0, k)
	for i := 0; i < k; i++ {
		idx := scored[i].idx
		label := ""
		if idx < len(l.labels) {
			label = l.labels[idx]
		}
		result = append(result, LabelScore{Label: label, Index: idx, Score: scored[i].score})
	}
	return result, nil
}

// Describe returns a short text describing the image through its top-k
// labels, suitable for chunking and embedding in place of extracted text.
func (l *Labeler) Describe(imageData []byte) (string, error) {
	scores, err := l.Label(imageData)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(scores))
	for _, s := range scores {
		if s.Label != "" {
			names = append(names, s.Label)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no labels produced")
	}
	return "This image most likely shows: " + strings.Join(names, ", ") + ".", nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	// image.Decode relies on registered decoders; fall back to explicit
	// JPEG then PNG for files with misleading sniffing bytes.
	if img, jerr := jpeg.Decode(bytes.NewReader(data)); jerr == nil {
		return img, nil
	}
	if img, perr := png.Decode(bytes.NewReader(data)); perr == nil {
		return img, nil
	}
	return nil, err
}

// preprocess resizes img to 224x224 and converts it to an NCHW float32
// tensor with ImageNet normalization.
func preprocess(img image.Image) []float32 {
	dst := image.NewRGBA(image.Rect(0, 0, inputWidth, inputHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	out := make([]float32, 1*3*inputHeight*inputWidth)
	const size = inputWidth * inputHeight

	for y := 0; y < inputHeight; y++ {
		for x := 0; x < inputWidth; x++ {
			idx := y*inputWidth + x
			c := dst.RGBAAt(x, y)
			r, g, b := float32(c.R)/255.0, float32(c.G)/255.0, float32(c.B)/255.0
			out[0*size+idx] = (r - imagenetMean[0]) / imagenetStd[0]
			out[1*size+idx] = (g - imagenetMean[1]) / imagenetStd[1]
			out[2*size+idx] = (b - imagenetMean[2]) / imagenetStd[2]
		}
	}
	return out
}
