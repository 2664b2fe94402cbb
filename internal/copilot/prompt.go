// Package copilot produces AI-assisted diagnostic summaries from a medical
// image plus clinical notes and lab values.
package copilot

import (
	"fmt"
	"strings"
)

type ImagingType string

const (
	ImagingXRay  ImagingType = "X-ray"
	ImagingCT    ImagingType = "CT Scan"
	ImagingOther ImagingType = "Other"
)

func (t ImagingType) IsValid() bool {
	switch t {
	case ImagingXRay, ImagingCT, ImagingOther:
		return true
	}
	return false
}

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
}

// LanguageName maps a locale code to the language the report is written
// in. Unknown codes get English.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(strings.TrimSpace(code))]; ok {
		return name
	}
	return "English"
}

const promptTemplate = `
ROLE: You are ClariDx, an expert AI medical imaging co-pilot. You are powered by a highly capable, pre-trained model with deep understanding of medical imaging and diagnostics.

TASK: Perform a comprehensive analysis of the provided medical image in conjunction with the clinical notes and lab values. Generate a detailed, structured report that includes:
1.  Image Description: A concise description of the key findings in the image.
2.  Potential Diagnosis / Impressions: A list of potential diagnoses or impressions, ordered from most to least likely.
3.  Synthesis: A paragraph synthesizing the image findings with the clinical notes and lab values to explain your reasoning.
4.  Recommendations: Suggest next steps, such as further tests or correlations.

CRITICAL INSTRUCTIONS:
- Generate the entire report in %s.
- Your analysis should be thorough and accurate, reflecting your expert capabilities.
- While providing potential diagnoses, frame them as possibilities to be confirmed by a qualified clinician. Use phrases like "Findings are suggestive of...", "Differential diagnoses include...", "This could represent...".
- Structure your output clearly using plain text headings: "Description:", "Impressions:", "Synthesis:", and "Recommendations:".
- Do not use markdown (like ** or ##) or any other formatting for headings.
- Do not add any disclaimers or text outside of this structured report.

INPUT DATA:

1. Clinical Context:
%s

2. Clinical Notes:
%s

3. Lab Values:
%s

4. Image Analysis:
[Analyze the attached image and incorporate findings into your report]

OUTPUT:
[Generate the structured report here]
`

func BuildPrompt(notes, labs string, imagingType ImagingType, language string) string {
	clinicalContext := fmt.Sprintf("The user has provided a %s.", imagingType)
	if imagingType == ImagingOther {
		clinicalContext = "The user has provided a medical image of an unspecified type. First, identify the anatomical region or subject of the image (e.g., skin, dental, endoscopy). Then, proceed with the analysis."
	}

	if strings.TrimSpace(notes) == "" {
		notes = "No clinical notes provided."
	}
	if strings.TrimSpace(labs) == "" {
		labs = "No lab values provided."
	}

	return fmt.Sprintf(promptTemplate, LanguageName(language), clinicalContext, notes, labs)
}
