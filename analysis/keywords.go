package analysis

// typeKeywords maps each challenge type to the terms that vote for it.
// Classification picks the type with the most hits, falling back to general.
var typeKeywords = map[string][]string{
	"cognitive": {
		"think", "thought", "mind", "memory", "attention", "learn",
		"reason", "decision", "cognition", "recall", "focus",
	},
	"theoretical": {
		"theory", "hypothesis", "model", "framework", "principle",
		"axiom", "postulate", "assumption", "predict",
	},
	"perceptual": {
		"perceive", "perception", "color", "sound", "sense", "visual",
		"illusion", "appearance", "observe", "sensory",
	},
	"temporal": {
		"time", "past", "future", "duration", "clock", "moment",
		"delay", "sequence", "simultaneous", "interval",
	},
	"quantum": {
		"quantum", "superposition", "entangle", "wavefunction",
		"particle", "collapse", "qubit", "decoherence",
	},
	"consciousness": {
		"conscious", "consciousness", "awareness", "experience",
		"qualia", "subjective", "sentient", "awake",
	},
	"observer": {
		"observer", "observation", "observe", "witness", "viewpoint",
		"perspective",
	},
	"reality": {
		"reality", "existence", "being", "ontology", "actual", "real",
		"manifest",
	},
	"synchronization": {
		"sync", "synchronize", "align", "coordinate", "harmony", "resonance",
	},
	"ai_alignment": {
		"artificial", "intelligence", "ai", "machine", "algorithm",
		"neural", "learning",
	},
}

// disciplineKeywords maps disciplines to their characteristic terms.
var disciplineKeywords = map[string][]string{
	"physics":          {"quantum", "gravity", "relativity", "particle", "energy", "magnetic", "field"},
	"mathematics":      {"equation", "proof", "theorem", "integral", "algebra", "geometry", "matrix"},
	"philosophy":       {"existence", "metaphysics", "ontology", "ethics", "epistemology", "free will"},
	"psychology":       {"memory", "attention", "behavior", "cognition", "emotion", "learning"},
	"neuroscience":     {"brain", "neuron", "synapse", "cortex", "neural"},
	"computer_science": {"algorithm", "computation", "simulation", "program", "software", "data structure"},
}

// complexityIndicators are terms that signal a challenge asks for more than a
// surface answer.
var complexityIndicators = []string{
	"why", "how", "explain", "derive", "prove", "relationship",
	"mechanism", "implication", "analyze", "compare", "contrast",
	"underlying", "fundamental",
}

// highUrgencyWords raise the urgency score of a challenge above its baseline;
// lowUrgencyWords lower it.
var highUrgencyWords = []string{
	"urgent", "immediate", "critical", "emergency", "now", "quickly",
}

var lowUrgencyWords = []string{
	"eventually", "someday", "general", "broadly", "theoretically",
}

// questionOpeners mark a text as a question even without a question mark.
var questionOpeners = []string{
	"what", "why", "how", "when", "where", "who", "which",
	"is", "are", "can", "do", "does", "will", "would", "could", "should",
}

// observerPronouns flag a challenge as observer-focused.
var observerPronouns = []string{"i", "me", "my", "myself", "we", "us", "our"}

// stopWords are excluded from density and key-concept extraction.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "to": true,
	"of": true, "in": true, "on": true, "at": true, "by": true, "for": true,
	"with": true, "about": true, "as": true, "it": true, "its": true,
	"this": true, "that": true, "these": true, "those": true, "and": true,
	"or": true, "but": true, "if": true, "then": true, "than": true,
	"so": true, "not": true, "no": true, "do": true, "does": true,
	"did": true, "can": true, "could": true, "will": true, "would": true,
	"should": true, "may": true, "might": true, "what": true, "when": true,
	"where": true, "who": true, "why": true, "how": true, "which": true,
	"i": true, "me": true, "my": true, "we": true, "us": true, "our": true,
	"you": true, "your": true, "he": true, "she": true, "they": true,
	"them": true, "there": true, "here": true, "from": true, "into": true,
	"have": true, "has": true, "had": true,
}
