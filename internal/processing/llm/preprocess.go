package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

// charsPerBatch bounds each correction prompt so batches finish in roughly
// constant time and can run in parallel (chars per token * tokens per second
// * seconds).
const charsPerBatch = 4 * 30 * 5

const preprocessPrompt = `Your task is to fix simple spelling errors and translate the text from the detected language to English.
Respond in valid JSON with the shape {{"result": ["..."]}}.

The following list of text strings is a list of answers submitted by students to a question asked by a teacher through a student response system during a lecture.
Correct any misspelled words in the text and return the list of answers as valid JSON.
If no corrections are required, return the original list. Correct ONLY misspellings, and do not fix punctuation, grammar, or casing.
Terms like "healthcare" that can be spelled as one word or two distinct words ("health" and "care") should always be returned as one word.
Expand all abbreviated words such as "dem(s)," "rep(s)," "gov," and "govt." Do not expand acronyms. Always include the dash for words with pro- or anti- in them.
Be aware that the answers may be written in different languages, and that you should make sure all of the text is also translated to English in addition to correcting the grammar mistakes.
Return exactly one output string per input string, in the same order.

Answers: {answers}`

// Preprocessor corrects spelling and translates answer batches to English.
// It returns exactly one document per input or an error; partial output is
// never surfaced.
type Preprocessor struct {
	client   *Client
	runnable runnableChain
}

var _ domain.Preprocessor = (*Preprocessor)(nil)

func NewPreprocessor(ctx context.Context, client *Client) (*Preprocessor, error) {
	runnable, err := client.compile(ctx, "", preprocessPrompt)
	if err != nil {
		return nil, err
	}
	return &Preprocessor{client: client, runnable: runnable}, nil
}

func (p *Preprocessor) CorrectAndTranslate(ctx context.Context, documents []string) ([]string, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	batches := splitBatches(documents)
	outputs := make([][]string, len(batches))
	errs := make([]error, len(batches))

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []string) {
			defer wg.Done()
			outputs[i], errs[i] = p.processBatch(ctx, batch)
		}(i, batch)
	}
	wg.Wait()

	result := make([]string, 0, len(documents))
	for i := range batches {
		if errs[i] != nil {
			return nil, errs[i]
		}
		result = append(result, outputs[i]...)
	}
	if len(result) != len(documents) {
		return nil, fmt.Errorf("llm: preprocessing returned %d documents for %d inputs", len(result), len(documents))
	}
	return result, nil
}

func (p *Preprocessor) processBatch(ctx context.Context, batch []string) ([]string, error) {
	content, err := p.client.invoke(ctx, p.runnable, map[string]any{
		"answers": quoteList(batch),
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Result []string `json:"result"`
	}
	if err := decodeJSON(content, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Result) != len(batch) {
		return nil, fmt.Errorf("llm: batch correction returned %d documents for %d inputs", len(parsed.Result), len(batch))
	}
	return parsed.Result, nil
}

func splitBatches(documents []string) [][]string {
	var batches [][]string
	var current []string
	size := 0
	for _, doc := range documents {
		if size >= charsPerBatch {
			batches = append(batches, current)
			current = nil
			size = 0
		}
		current = append(current, doc)
		size += len(doc)
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

func quoteList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		quoted = append(quoted, fmt.Sprintf("%q", item))
	}
	return "[" + strings.Join(quoted, ",\n") + "]"
}
