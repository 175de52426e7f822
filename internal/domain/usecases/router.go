package usecases

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

// WebSearchSentinel in a local answer asks the router to consult the web.
const WebSearchSentinel = "NEED_WEB_SEARCH"

const (
	noCodeContextNeeded = "No code context needed for this question."
	noRelevantFiles     = "No relevant code files found."

	defaultProjectDescription = "No project description provided."
	defaultTemperature        = 0.6
	defaultKDocs              = 3
)

// codeIndicators mark a question as code related.
var codeIndicators = []string{
	"code", "file", "function", "class", "method", "implementation",
	"module", "import", "variable", "define", "declaration", "return",
	"parameter", "argument", "error", "bug", "issue", "fix", ".py",
	"python", "script",
}

// RouterConfig tunes a QueryRouter.
type RouterConfig struct {
	ProjectDescription string
	KDocs              int
	Temperature        *float64 // nil selects the default; zero is greedy decoding
}

// RetrievedFile is a file whose full content was selected as code context.
type RetrievedFile struct {
	Name    string
	Content string
}

// QueryRouter answers questions by classifying them, retrieving code context,
// asking the model, and escalating to web search when the model asks for it.
type QueryRouter struct {
	llm         ports.LLMService
	searcher    ports.WebSearcher
	retriever   ports.DocumentRetriever
	contents    ports.ContentSource
	chat        *ConversationContext
	cfg         RouterConfig
	temperature float64
	logger      *zap.Logger

	mu         sync.RWMutex
	ragEnabled bool
}

// NewQueryRouter creates a router with RAG mode enabled.
func NewQueryRouter(
	llm ports.LLMService,
	searcher ports.WebSearcher,
	retriever ports.DocumentRetriever,
	contents ports.ContentSource,
	chat *ConversationContext,
	cfg RouterConfig,
	logger *zap.Logger,
) *QueryRouter {
	if cfg.ProjectDescription == "" {
		cfg.ProjectDescription = defaultProjectDescription
	}
	if cfg.KDocs <= 0 {
		cfg.KDocs = defaultKDocs
	}
	temperature := defaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryRouter{
		llm:         llm,
		searcher:    searcher,
		retriever:   retriever,
		contents:    contents,
		chat:        chat,
		cfg:         cfg,
		temperature: temperature,
		logger:      logger,
		ragEnabled:  true,
	}
}

// Answer runs one conversational turn and returns the final answer text.
// It never fails: errors are reported as answer text.
func (r *QueryRouter) Answer(ctx context.Context, question string) string {
	answer, err := r.answer(ctx, question)
	if err != nil {
		msg := fmt.Sprintf("Error processing response: %v", err)
		r.logger.Error("answering question failed", zap.Error(err))
		return msg
	}
	return answer
}

func (r *QueryRouter) answer(ctx context.Context, question string) (string, error) {
	// History is captured before the question itself is recorded.
	history := r.chat.ContextString()
	r.chat.AddMessage(entities.RoleUser, question, time.Time{})

	var final string
	if !r.RAGStatus() {
		r.logger.Debug("rag disabled, answering from conversation only")
		out, err := r.llm.Generate(ctx, r.conversationPrompt(history, question), r.temperature)
		if err != nil {
			return "", fmt.Errorf("generating response: %w", err)
		}
		final = out
	} else {
		codeContext := noCodeContextNeeded
		if r.IsCodeRelated(question) {
			r.logger.Debug("question looks code related, searching codebase")
			codeContext = FormatCodeContext(r.RetrieveFiles(ctx, question))
		} else {
			r.logger.Debug("question does not look code related, skipping codebase search")
		}

		local, err := r.llm.Generate(ctx, r.localPrompt(history, codeContext, question), r.temperature)
		if err != nil {
			return "", fmt.Errorf("generating response: %w", err)
		}

		if strings.Contains(local, WebSearchSentinel) {
			r.logger.Debug("local context insufficient, escalating to web search")
			final, err = r.escalate(ctx, history, codeContext, question)
			if err != nil {
				return "", err
			}
		} else {
			final = local
		}
	}

	r.chat.AddMessage(entities.RoleAssistant, final, time.Time{})
	return final, nil
}

// escalate answers with web results added to the prompt. A failed search
// becomes the answer text; a failed generation is returned as an error.
func (r *QueryRouter) escalate(ctx context.Context, history, codeContext, question string) (string, error) {
	if r.searcher == nil {
		return "Error during web search: no web search provider configured", nil
	}

	results, err := r.searcher.Search(ctx, question)
	if err != nil {
		r.logger.Warn("web search failed", zap.Error(err))
		return fmt.Sprintf("Error during web search: %v", err), nil
	}

	prompt := r.webPrompt(history, codeContext, FormatSearchResults(results), question)
	out, err := r.llm.Generate(ctx, prompt, r.temperature)
	if err != nil {
		return "", fmt.Errorf("generating web-augmented response: %w", err)
	}
	return out, nil
}

// IsCodeRelated reports whether question mentions a code keyword or a cached file name.
func (r *QueryRouter) IsCodeRelated(question string) bool {
	lower := strings.ToLower(question)
	for _, indicator := range codeIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return len(r.mentionedFiles(lower)) > 0
}

// RetrieveFiles selects code context for a question. Files named in the
// question win outright; otherwise the vector index is consulted.
// Retrieval errors degrade to an empty result.
func (r *QueryRouter) RetrieveFiles(ctx context.Context, question string) []RetrievedFile {
	lower := strings.ToLower(question)

	var mentioned []RetrievedFile
	for _, name := range r.mentionedFiles(lower) {
		if content, ok := r.contents.FullContent(name); ok && content != "" {
			mentioned = append(mentioned, RetrievedFile{Name: name, Content: content})
		}
	}
	if len(mentioned) > 0 {
		r.logger.Debug("using explicitly mentioned files", zap.Int("files", len(mentioned)))
		return mentioned
	}

	if r.retriever == nil || r.contents == nil {
		return nil
	}
	docs, err := r.retriever.Search(ctx, question, r.cfg.KDocs)
	if err != nil {
		r.logger.Warn("similarity search failed", zap.Error(err))
		return nil
	}

	var files []RetrievedFile
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		name := doc.Metadata.FileName
		if name == "" || !doc.Metadata.FullContentAvailable || seen[name] {
			continue
		}
		content, ok := r.contents.FullContent(name)
		if !ok || content == "" {
			continue
		}
		seen[name] = true
		files = append(files, RetrievedFile{Name: name, Content: content})
	}
	r.logger.Debug("similarity search", zap.Int("hits", len(docs)), zap.Int("files", len(files)))
	return files
}

func (r *QueryRouter) mentionedFiles(lowerQuestion string) []string {
	if r.contents == nil {
		return nil
	}
	var names []string
	for _, name := range r.contents.FileNames() {
		if strings.Contains(lowerQuestion, strings.ToLower(name)) {
			names = append(names, name)
		}
	}
	return names
}

// ToggleRAG flips RAG mode and returns the new state.
func (r *QueryRouter) ToggleRAG() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ragEnabled = !r.ragEnabled
	return r.ragEnabled
}

// RAGStatus reports whether RAG mode is enabled.
func (r *QueryRouter) RAGStatus() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ragEnabled
}

// FormatCodeContext renders retrieved files as delimited sections in retrieval order.
func FormatCodeContext(files []RetrievedFile) string {
	if len(files) == 0 {
		return noRelevantFiles
	}
	sections := make([]string, len(files))
	for i, f := range files {
		sections[i] = fmt.Sprintf("=== %s ===\n%s\n", f.Name, f.Content)
	}
	return strings.Join(sections, "\n\n")
}

// FormatSearchResults renders web results as "- title: content" lines.
func FormatSearchResults(results []entities.SearchResult) string {
	lines := make([]string, len(results))
	for i, res := range results {
		lines[i] = fmt.Sprintf("- %s: %s", res.Title, res.Content)
	}
	return strings.Join(lines, "\n")
}
