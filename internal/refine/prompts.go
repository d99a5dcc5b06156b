package refine

import "fmt"

// StopPhrase in a critique signals that the loop should terminate early.
const StopPhrase = "no further issues"

// PromptSet holds the three templates driving one refine loop. Templates
// are plain Sprintf patterns; argument order is documented per field.
type PromptSet struct {
	System   string
	Generate string // args: task input
	Critique string // args: task input, draft
	Refine   string // args: task input, draft, critique
}

// GeneratePrompt renders the initial generation prompt.
func (p PromptSet) GeneratePrompt(input string) string {
	return fmt.Sprintf(p.Generate, input)
}

// CritiquePrompt renders the review prompt for the current draft.
func (p PromptSet) CritiquePrompt(input, draft string) string {
	return fmt.Sprintf(p.Critique, input, draft)
}

// RefinePrompt renders the revision prompt from a draft and its critique.
func (p PromptSet) RefinePrompt(input, draft, critique string) string {
	return fmt.Sprintf(p.Refine, input, draft, critique)
}

const systemPrompt = "You are a careful, rigorous expert. You do not fabricate facts and you follow the requested format exactly."

// GenericPrompts answers a free-form question.
var GenericPrompts = PromptSet{
	System: systemPrompt,
	Generate: "Answer the question below concisely and accurately.\n\n" +
		"[Question]\n%s\n\n[Answer]\n",
	Critique: "You are a reviewer. List the flaws of the draft answer as short bullets, " +
		"each with a concrete fix. Check factuality, clarity, conciseness and format. " +
		"If the draft needs no changes, reply with exactly: " + StopPhrase + ".\n\n" +
		"[Question]\n%s\n\n[Draft answer]\n%s\n\n[Feedback]\n",
	Refine: "You are the author. Rewrite the draft applying all of the feedback. " +
		"When feedback conflicts, prefer factuality and conciseness.\n\n" +
		"[Question]\n%s\n\n[Previous draft]\n%s\n\n[Feedback]\n%s\n\n[Revised answer]\n",
}

// SummarizationPrompts condenses a source text while preserving facts.
var SummarizationPrompts = PromptSet{
	System: systemPrompt,
	Generate: "Summarize the text below in at most four sentences. " +
		"Preserve facts; add nothing that is not in the text.\n\n" +
		"[Text]\n%s\n\n[Summary]\n",
	Critique: "You are a reviewer. Point out flaws in the draft summary as short bullets " +
		"with a fix for each: invented content, missing key points, redundancy, format. " +
		"If the summary needs no changes, reply with exactly: " + StopPhrase + ".\n\n" +
		"[Text]\n%s\n\n[Draft summary]\n%s\n\n[Feedback]\n",
	Refine: "You are the author. Rewrite the summary applying all of the feedback. " +
		"Prefer factuality and brevity when feedback conflicts.\n\n" +
		"[Text]\n%s\n\n[Previous summary]\n%s\n\n[Feedback]\n%s\n\n[Revised summary]\n",
}

// CodePrompts produces a single self-contained Python snippet.
var CodePrompts = PromptSet{
	System: systemPrompt,
	Generate: "You are a pragmatic Python developer. Write code that satisfies the " +
		"requirement below. Handle edge cases first; keep it readable. " +
		"Output exactly one self-contained snippet in a ```python fenced block.\n\n" +
		"[Requirement]\n%s\n",
	Critique: "You are a senior code reviewer. Review the draft with test success and " +
		"edge cases as top priorities; list problems as short bullets with a fix each. " +
		"If the code needs no changes, reply with exactly: " + StopPhrase + ".\n\n" +
		"[Requirement]\n%s\n\n[Draft code]\n%s\n\n[Feedback]\n",
	Refine: "You are the author. Rewrite the code applying all of the feedback. " +
		"Output exactly one self-contained snippet in a ```python fenced block.\n\n" +
		"[Requirement]\n%s\n\n[Previous code]\n%s\n\n[Feedback]\n%s\n",
}
