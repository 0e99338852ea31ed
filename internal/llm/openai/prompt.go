package openai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const systemPrompt = "You are a professional content writer and SEO expert. Always provide output in valid JSON format."

// BuildPrompt creates the chat messages for a blog generation request.
func BuildPrompt(topic, tone string, keywords []string, referenceText string) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(topic, tone, keywords, referenceText)},
	}
}

func buildUserPrompt(topic, tone string, keywords []string, referenceText string) string {
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil || keywords == nil {
		keywordsJSON = []byte("[]")
	}

	return fmt.Sprintf(`Create a blog article with the following details:
Topic: %s
Tone: %s
Target Keywords: %s
Reference Documents: %s

Requirements:
1. SEO-optimized content
2. Natural, human-like writing style
3. Compelling title
4. Strategic keyword usage
5. Structured outline with H2 and H3 tags
6. Comprehensive, editable draft

Please provide the output in the following JSON structure:
{
    "blog_title": "Your generated title",
    "keywords": {
        "user_keywords": %s,
        "additional_keywords": []
    },
    "blog_outline": "Your outline with H2/H3 tags",
    "blog_draft": "Your complete blog draft"
}`, topic, tone, strings.Join(keywords, ", "), referenceText, keywordsJSON)
}
