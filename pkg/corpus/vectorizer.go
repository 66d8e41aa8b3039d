package corpus

import (
	"math"
	"sort"
)

// Vocabulary is the fitted term table of a corpus build: term → index,
// per-term document frequency, and the document count the frequencies were
// fitted on. It is persisted alongside the rules so a server can restore an
// index without refitting.
type Vocabulary struct {
	Terms   map[string]int `json:"terms"`
	DocFreq []int          `json:"doc_freq"`
	NumDocs int            `json:"num_docs"`
}

// SparseVector is an L2-normalized tf-idf vector stored as parallel slices
// sorted by term index. The fixed ordering keeps floating-point accumulation
// order stable, so repeated transforms and similarity computations over the
// same corpus are bit-identical.
type SparseVector struct {
	Indices []int     `json:"indices"`
	Weights []float64 `json:"weights"`
}

// Len returns the number of non-zero terms.
func (sv SparseVector) Len() int { return len(sv.Indices) }

// Vectorizer maps text to the corpus's tf-idf space. Transform is pure and
// safe for concurrent use; fitting happens once at corpus build time.
type Vectorizer struct {
	vocab Vocabulary
	idf   []float64
}

// FitVectorizer learns the vocabulary and document frequencies from the
// corpus documents. Term indices are assigned in sorted term order so the
// fitted representation is independent of document iteration order.
func FitVectorizer(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range tokenize(doc) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocab := Vocabulary{
		Terms:   make(map[string]int, len(terms)),
		DocFreq: make([]int, len(terms)),
		NumDocs: len(docs),
	}
	for i, term := range terms {
		vocab.Terms[term] = i
		vocab.DocFreq[i] = df[term]
	}
	return NewVectorizer(vocab)
}

// NewVectorizer restores a vectorizer from a persisted vocabulary.
func NewVectorizer(vocab Vocabulary) *Vectorizer {
	idf := make([]float64, len(vocab.DocFreq))
	for i, df := range vocab.DocFreq {
		// Smoothed idf; never zero, so every known term contributes.
		idf[i] = math.Log(float64(1+vocab.NumDocs)/float64(1+df)) + 1
	}
	return &Vectorizer{vocab: vocab, idf: idf}
}

// Vocabulary returns the fitted term table.
func (v *Vectorizer) Vocabulary() Vocabulary { return v.vocab }

// Transform maps text to its L2-normalized tf-idf vector. Terms outside the
// fitted vocabulary are ignored.
func (v *Vectorizer) Transform(text string) SparseVector {
	tf := make(map[int]float64)
	for _, term := range tokenize(text) {
		if idx, ok := v.vocab.Terms[term]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return SparseVector{}
	}

	indices := make([]int, 0, len(tf))
	for idx := range tf {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	weights := make([]float64, len(indices))
	var sumSquares float64
	for i, idx := range indices {
		w := tf[idx] * v.idf[idx]
		weights[i] = w
		sumSquares += w * w
	}
	norm := math.Sqrt(sumSquares)
	for i := range weights {
		weights[i] /= norm
	}
	return SparseVector{Indices: indices, Weights: weights}
}

// Cosine returns the cosine similarity of two normalized vectors, clamped
// to [0, 1]. The merge walk over the sorted index slices fixes the summation
// order, so the result is bit-identical across calls. With non-negative
// tf-idf weights the dot product cannot go negative; the clamp guards the
// floating-point upper edge.
func Cosine(a, b SparseVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] < b.Indices[j]:
			i++
		case a.Indices[i] > b.Indices[j]:
			j++
		default:
			dot += a.Weights[i] * b.Weights[j]
			i++
			j++
		}
	}
	if dot > 1 {
		return 1
	}
	if dot < 0 {
		return 0
	}
	return dot
}
