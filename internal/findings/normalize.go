package findings

const (
	sentinelCategory = "error"
	sentinelTitle    = "Non-UI Image Detected"

	unknownTitle    = "Unknown"
	unknownCategory = "unknown"

	bucketCapacity    = 4
	bucketMaxPositive = 2
	bucketMaxNegative = 2
)

// InvalidImageFinding is returned in place of all other findings when the
// collaborator reports that the upload is not a user interface.
func InvalidImageFinding() NormalizedFinding {
	return NormalizedFinding{
		Label:      "Invalid Image Type",
		Confidence: ConfidenceHigh,
		Response:   "Please upload a UI-related image (website, app interface, or digital product design).",
		Status:     StatusIssue,
		Category:   sentinelCategory,
		Details:    "This tool is specifically designed to analyze user interfaces.",
		Solution:   stringPtr("Upload a screenshot of a website, mobile app, or digital interface."),
		Type:       ItemIssue,
		IsPositive: false,
	}
}

// IsNonUIImage reports whether raw is the collaborator's non-UI sentinel.
func IsNonUIImage(raw []RawFinding) bool {
	if len(raw) != 1 || raw[0].Category != sentinelCategory || len(raw[0].Items) == 0 {
		return false
	}
	return raw[0].Items[0].Title == sentinelTitle
}

// Normalize flattens, classifies and balances raw collaborator records.
// Output order follows the first arrival of each category, then arrival
// order inside it.
func Normalize(raw []RawFinding) []NormalizedFinding {
	if len(raw) == 0 {
		return []NormalizedFinding{}
	}
	if IsNonUIImage(raw) {
		return []NormalizedFinding{InvalidImageFinding()}
	}

	var order []string
	buckets := make(map[string]*bucket)
	for _, rf := range raw {
		for _, item := range rf.Items {
			f := normalizeItem(rf, item)
			key := f.Category
			if key == "" {
				key = unknownCategory
			}
			b, ok := buckets[key]
			if !ok {
				b = &bucket{}
				buckets[key] = b
				order = append(order, key)
			}
			b.admit(f)
		}
	}

	out := make([]NormalizedFinding, 0)
	for _, key := range order {
		out = append(out, buckets[key].items...)
	}
	return out
}

func normalizeItem(rf RawFinding, item RawItem) NormalizedFinding {
	status := classify(item.Type)

	label := item.Title
	if label == "" {
		label = unknownTitle
	}
	confidence := rf.Confidence
	if confidence == "" {
		confidence = ConfidenceNA
	}
	itemType := item.Type
	if itemType == "" {
		itemType = ItemInfo
	}

	var solution *string
	if status == StatusSuggestion {
		if s := ExtractSolution(item.Description); s != "" {
			solution = stringPtr(s)
		}
	} else if item.Solution != nil {
		solution = stringPtr(*item.Solution)
	}

	return NormalizedFinding{
		Label:      label,
		Confidence: confidence,
		Response:   item.Description,
		Status:     status,
		Category:   rf.Category,
		Details:    item.Description,
		Solution:   solution,
		Type:       itemType,
		IsPositive: status == StatusSuggestion,
	}
}

func classify(t ItemType) Status {
	switch t {
	case ItemIssue:
		return StatusIssue
	case ItemRecommendation:
		return StatusSuggestion
	default:
		return StatusInfo
	}
}

// bucket holds at most four findings of one category, two of each polarity.
type bucket struct {
	items    []NormalizedFinding
	positive int
	negative int
}

func (b *bucket) admit(f NormalizedFinding) bool {
	if len(b.items) >= bucketCapacity {
		return false
	}
	if f.IsPositive {
		if b.positive >= bucketMaxPositive {
			return false
		}
		b.positive++
	} else {
		if b.negative >= bucketMaxNegative {
			return false
		}
		b.negative++
	}
	b.items = append(b.items, f)
	return true
}
