package knowledge

// defaultEntities is the built-in entity set. Projects auditing a
// different corpus supply their own set via a YAML knowledge file.
var defaultEntities = []Entity{
	{
		Name:         "gpt-5",
		Aliases:      []string{"gpt5", "gpt 5"},
		Organization: "OpenAI",
		Category:     "proprietary language model",
		RelatedTerms: []string{"gpt-4o", "o3", "chatgpt"},
		KeyFeatures:  []string{"reasoning", "multimodal", "long context", "tool use"},
	},
	{
		Name:         "claude",
		Aliases:      []string{"claude opus", "claude sonnet", "claude haiku"},
		Organization: "Anthropic",
		Category:     "proprietary language model",
		RelatedTerms: []string{"opus", "sonnet", "haiku"},
		KeyFeatures:  []string{"reasoning", "long context", "coding", "safety"},
	},
	{
		Name:         "gemini",
		Aliases:      []string{"gemini pro", "gemini ultra", "gemini flash"},
		Organization: "Google",
		Category:     "proprietary language model",
		RelatedTerms: []string{"palm", "bard"},
		KeyFeatures:  []string{"multimodal", "long context", "search grounding"},
	},
	{
		Name:         "llama",
		Aliases:      []string{"llama 3", "llama 4", "llama3"},
		Organization: "Meta",
		Category:     "open-weight language model",
		RelatedTerms: []string{"mistral", "qwen"},
		KeyFeatures:  []string{"open weights", "fine-tuning", "local inference"},
	},
	{
		Name:         "mistral",
		Aliases:      []string{"mixtral", "mistral large"},
		Organization: "Mistral AI",
		Category:     "open-weight language model",
		RelatedTerms: []string{"llama", "mixture of experts"},
		KeyFeatures:  []string{"open weights", "mixture of experts", "efficiency"},
	},
	{
		Name:         "qwen",
		Aliases:      []string{"qwen2", "qwen 2.5"},
		Organization: "Alibaba",
		Category:     "open-weight language model",
		RelatedTerms: []string{"llama", "deepseek"},
		KeyFeatures:  []string{"multilingual", "open weights", "coding"},
	},
	{
		Name:         "deepseek",
		Aliases:      []string{"deepseek-r1", "deepseek v3"},
		Organization: "DeepSeek",
		Category:     "open-weight language model",
		RelatedTerms: []string{"qwen", "reasoning model"},
		KeyFeatures:  []string{"reasoning", "open weights", "efficiency"},
	},
}

// defaultTechnicalTerms is the domain vocabulary prioritized during
// key-term extraction, after entity names.
var defaultTechnicalTerms = []string{
	"context window", "parameters", "tokens", "embedding", "inference",
	"fine-tuning", "quantization", "latency", "throughput", "accuracy",
	"hallucination", "alignment", "reasoning", "multimodal", "training",
	"benchmark", "prompt", "temperature", "retrieval", "rag",
}

// defaultBenchmarks are benchmark names appended to performance queries.
var defaultBenchmarks = []string{
	"mmlu", "gsm8k", "humaneval", "arc", "hellaswag", "mt-bench",
}

// defaultStopWords filters terms with no search value.
// Mirrors the stop list used by the static embedder tokenizer.
var defaultStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "must": true, "shall": true, "can": true,
	"i": true, "you": true, "he": true, "she": true, "it": true,
	"we": true, "they": true, "what": true, "which": true, "who": true,
	"whom": true, "this": true, "that": true, "these": true, "those": true,
	"am": true, "to": true, "of": true, "in": true, "for": true,
	"on": true, "with": true, "at": true, "by": true, "from": true,
	"as": true, "into": true, "through": true, "during": true, "about": true,
	"before": true, "after": true, "above": true, "below": true, "between": true,
	"and": true, "or": true, "but": true, "if": true, "then": true,
	"because": true, "while": true, "although": true, "how": true, "why": true,
	"when": true, "where": true, "there": true, "here": true, "me": true,
	"tell": true, "please": true, "much": true, "many": true,
}
