package gemini

import (
	"fmt"
	"strings"
)

// buildTextAnalysisPrompt creates the detection prompt for plain text.
// learningContext, when non-empty, summarizes past detection performance
// so the model can calibrate against confirmed mistakes.
func buildTextAnalysisPrompt(text, learningContext string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are an expert at detecting AI-generated text. Analyze the following text and determine whether it was written by an AI model or a human.

Consider these signals:
- Repetitive sentence structures and uniform sentence length
- Overly formal or generic phrasing without personal voice
- Absence of typos, colloquialisms, and emotional language
- Formulaic transitions and hedging
- Personal anecdotes, humor, and idiosyncratic word choices suggest a human author

Text to analyze:
"""
%s
"""`, text)

	if learningContext != "" {
		sb.WriteString("\n\n")
		sb.WriteString(learningContext)
	}
	sb.WriteString("\n\n")
	sb.WriteString(responseFormat)
	return sb.String()
}

// buildImageAnalysisPrompt creates the detection prompt for an image
// containing text, such as a photographed homework page.
func buildImageAnalysisPrompt(learningContext string) string {
	var sb strings.Builder
	sb.WriteString(`You are an expert at detecting AI-generated text. First, read all text visible in the attached image. Then determine whether that text was written by an AI model or a human.

Consider these signals:
- Repetitive sentence structures and uniform sentence length
- Overly formal or generic phrasing without personal voice
- Absence of typos, colloquialisms, and emotional language
- Handwriting irregularities and corrections suggest a human author

Include the text you read from the image in the "extracted_text" field.`)

	if learningContext != "" {
		sb.WriteString("\n\n")
		sb.WriteString(learningContext)
	}
	sb.WriteString("\n\n")
	sb.WriteString(responseFormat)
	return sb.String()
}

const responseFormat = `**Response Format:**
Return your analysis as a JSON object with this exact structure:

{
  "ai_probability": 0,
  "ai_detected": false,
  "confidence_score": 0,
  "ai_indicators": ["signal suggesting AI authorship"],
  "human_indicators": ["signal suggesting human authorship"],
  "detailed_analysis": "Your reasoning in a few sentences",
  "recommendation": "What the reader should do with this result",
  "extracted_text": "Only for images: the text read from the image"
}

ai_probability and confidence_score are percentages from 0 to 100. Set ai_detected to true when ai_probability is above 50.

**Important:** Return ONLY the JSON object, no additional text or explanation.`
