package xlitfix

// DefaultTargetLang is the target language requested from the model.
const DefaultTargetLang = "en"

// DefaultSeparator joins the sentences of a batch for the bulk dictionary
// pass. It is a private-use code point, so it never occurs in real text.
const DefaultSeparator = "\uE000"

// TextNode represents a correctable unit of content inside a document.
type TextNode struct {
	ID       string            // Unique identifier (UUID)
	Text     string            // Original text content (trimmed)
	Hash     string            // SHA-256 hash of Text
	NodeType string            // Content type: "html_text", "html_attr", etc.
	Metadata map[string]string // Additional info (parent tag, attribute name, etc.)
}

// BatchResult is the output of the Word Replacer for one batch. Corrected and
// Missing have one element per input sentence, and every Missing element has
// at least one entry ("" when nothing is missing).
type BatchResult struct {
	Corrected []string
	Missing   [][]string

	// Desynced is true when the joined pass split into the wrong number of
	// segments and the batch was redone sentence by sentence.
	Desynced bool
}

// ProcessedBatch is the result of running a batch through the full pipeline.
type ProcessedBatch struct {
	Corrected   []string
	Missing     [][]string
	ModelCount  int // Sentences transliterated by the model
	CachedCount int // Sentences served from the cache
	FailedCount int // Sentences the model could not transliterate
	Total       int // Sentences in the batch
}

// ProcessedContent is the result of correcting a document.
type ProcessedContent struct {
	Content     string   // Corrected content
	ModelCount  int      // Number of newly transliterated nodes
	CachedCount int      // Number of cache hits
	TotalNodes  int      // Total source-script nodes found
	Missing     []string // Unique words left in the source script
}

// IgnoredTags contains HTML tags whose content should not be corrected.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}
