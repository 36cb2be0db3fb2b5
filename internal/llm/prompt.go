package llm

import (
	"fmt"
	"strings"
)

// NoMajorComplaint is the main complaint the model is told to write when nothing recurs.
const NoMajorComplaint = "Genel memnuniyet yüksek"

// BuildPrompt renders the review texts, most recent first, into the extraction instruction.
// The model is asked for the dominant trend only: a problem counts when more than 20% of
// the reviews report it.
func BuildPrompt(texts []string) string {
	var reviews strings.Builder
	for _, text := range texts {
		reviews.WriteString("- ")
		reviews.WriteString(strings.ReplaceAll(strings.TrimSpace(text), "\n", " "))
		reviews.WriteString("\n")
	}

	return fmt.Sprintf(`You are analyzing customer reviews of a single e-commerce clothing product.
Your task is to identify the OVERALL trend of the reviews, not a few outliers.
The reviews are in Turkish and listed most recent first.

REVIEWS:
%s
Extract the following information as JSON. Output ONLY the JSON object, no explanation:

{
  "fitment_problem": true/false,
  "fitment_severity": 0-10,
  "quality_sentiment": 1-5,
  "delivery_issue": true/false,
  "color_mismatch": true/false,
  "main_complaint": "string",
  "fabric_quality_issue": true/false,
  "price_value_perception": 1-5
}

CRITICAL RULES:

1. fitment_problem: TRUE only if MORE than 20%% of the reviews (1 in 5) report a size or fit problem.
   Example: with 100 reviews, TRUE only if more than 20 say "too big/too small/loose/tight".

2. fabric_quality_issue: TRUE only if MORE than 20%% of the reviews complain about fabric quality.
   Example: with 100 reviews, TRUE only if more than 20 say "bad/thin/poor fabric".

3. delivery_issue: TRUE only if MORE than 20%% of the reviews report a delivery problem.

4. color_mismatch: TRUE only if MORE than 20%% of the reviews report a color mismatch.

5. quality_sentiment: reflect the quality perception of the MAJORITY.
   - majority says "excellent/great/high quality" -> 5
   - majority says "good/nice" -> 4
   - majority says "average" -> 3
   - majority says "bad" -> 2
   - majority says "terrible" -> 1

6. main_complaint: the most frequently repeated serious complaint, written in Turkish.
   If there is no serious complaint write "%s".

7. fitment_severity (0-10) and price_value_perception (1-5): reflect the OVERALL trend.
   fitment_severity is 0 when fitment_problem is false.

EXAMPLES:

Scenario 1:
- 100 reviews
- 95 people: "Excellent, great, loved it"
- 3 people: "Size came out big"
- 2 people: "Fabric is thin"
-> fitment_problem: false (3%% < 20%%)
-> fabric_quality_issue: false (2%% < 20%%)
-> quality_sentiment: 5
-> main_complaint: "%s"

Scenario 2:
- 100 reviews
- 30 people: "Size is far too big, bad cut"
- 70 people: "Nice product"
-> fitment_problem: true (30%% > 20%%)
-> fitment_severity: 7 (serious problem)
-> quality_sentiment: 4 (the majority is satisfied)
-> main_complaint: "Beden büyük geliyor"

REPORT ONLY WIDESPREAD PROBLEMS. A handful of people mentioning something is NOT a problem.`,
		reviews.String(), NoMajorComplaint, NoMajorComplaint)
}
