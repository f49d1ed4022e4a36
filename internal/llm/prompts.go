package llm

// Answer and judge prompts match the published evaluation protocols of each
// benchmark so results stay directly comparable to the papers' numbers.

import (
	"fmt"

	"github.com/membench/membench/internal/models"
)

const (
	locomoAnswerSystem = "You are a helpful assistant. Answer the question based ONLY on the " +
		"provided context. Keep your answer concise (5-6 words maximum). " +
		"If the context does not contain enough information, say 'I don't know'."

	locomoAnswerUser = "Context:\n%s\n\nQuestion: %s\n\nAnswer (5-6 words max):"

	locomoJudgeSystem = "You are an evaluation judge. Compare the predicted answer against " +
		"the gold answer. The predicted answer is CORRECT if it conveys the " +
		"same meaning as the gold answer, even if worded differently. " +
		"Respond with exactly one word: CORRECT or WRONG."

	longMemEvalAnswerSystem = "You are a helpful assistant with access to conversation history stored " +
		"in memory. Answer the question based ONLY on the provided memory " +
		"excerpts. Be concise and specific."

	longMemEvalAnswerUser = "Memory excerpts:\n%s\n\nQuestion: %s\n\nAnswer:"

	tofuAnswerSystem = "You are a helpful assistant. Answer the question based ONLY on the " +
		"provided context about the author. Be concise and factual."

	tofuAnswerUser = "Context:\n%s\n\nQuestion: %s\n\nAnswer:"

	judgeUser = "Question: %s\nGold answer: %s\nPredicted answer: %s\n\nVerdict:"
)

// longMemEvalJudgePrompts are the type-specific judge instructions from the
// LongMemEval evaluation protocol.
var longMemEvalJudgePrompts = map[string]string{
	"information_extraction": "The question asks to extract specific information from conversations. " +
		"Is the predicted answer correct and complete compared to the gold answer? " +
		"Respond CORRECT or WRONG.",
	"multi_session": "The question requires synthesizing information across multiple sessions. " +
		"Does the predicted answer correctly combine the relevant information? " +
		"Respond CORRECT or WRONG.",
	"temporal_reasoning": "The question requires understanding temporal order or time-based reasoning. " +
		"Is the predicted answer temporally accurate compared to the gold answer? " +
		"Respond CORRECT or WRONG.",
	"knowledge_update": "The question tests whether updated/corrected information is reflected. " +
		"Does the predicted answer reflect the most recent information? " +
		"Respond CORRECT or WRONG.",
	"abstention": "The question tests whether the system correctly abstains when information " +
		"is unavailable. The gold answer indicates the expected response. " +
		"Is the predicted answer appropriate (abstaining when it should)? " +
		"Respond CORRECT or WRONG.",
}

// BuildAnswerMessages assembles the fixed answer-generation prompt for a
// dataset.
func BuildAnswerMessages(dataset, question, context string) []Message {
	switch dataset {
	case models.DatasetLoCoMo:
		return []Message{
			{Role: "system", Content: locomoAnswerSystem},
			{Role: "user", Content: fmt.Sprintf(locomoAnswerUser, context, question)},
		}
	case models.DatasetLongMemEval:
		return []Message{
			{Role: "system", Content: longMemEvalAnswerSystem},
			{Role: "user", Content: fmt.Sprintf(longMemEvalAnswerUser, context, question)},
		}
	default:
		return []Message{
			{Role: "system", Content: tofuAnswerSystem},
			{Role: "user", Content: fmt.Sprintf(tofuAnswerUser, context, question)},
		}
	}
}

// BuildJudgeMessages assembles the LLM-as-judge prompt. Only LoCoMo and
// LongMemEval have a judge prompt; the selective-forgetting dataset is
// scored with ROUGE-L and routing it here is a contract violation.
func BuildJudgeMessages(dataset, question, goldAnswer, predictedAnswer, questionType string) ([]Message, error) {
	switch dataset {
	case models.DatasetTOFU:
		return nil, fmt.Errorf("tofu uses ROUGE-L scoring, not LLM-as-judge")
	case models.DatasetLoCoMo:
		return []Message{
			{Role: "system", Content: locomoJudgeSystem},
			{Role: "user", Content: fmt.Sprintf(judgeUser, question, goldAnswer, predictedAnswer)},
		}, nil
	case models.DatasetLongMemEval:
		typePrompt, ok := longMemEvalJudgePrompts[questionType]
		if !ok {
			typePrompt = longMemEvalJudgePrompts["information_extraction"]
		}
		system := "You are an evaluation judge for memory system benchmarks. " + typePrompt
		return []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: fmt.Sprintf(judgeUser, question, goldAnswer, predictedAnswer)},
		}, nil
	default:
		return nil, fmt.Errorf("unknown dataset for judge: %s", dataset)
	}
}
