package domain

// Explanation — текст модалки для карточки метрики.
type Explanation struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// MetricExplanations отображает ключ карточки в пояснение.
var MetricExplanations = map[string]Explanation{
	"assets":     {Title: "High-Importance Assets Addressed", Text: "This shows how many high-importance assets (Importance > 3) your plan directly addresses out of the total in your inventory. The AI determines which initiatives have the most impact on securing these key assets."},
	"risk":       {Title: "New Risk Score", Text: "This is the AI's projection of your organization's overall cybersecurity risk score (from 0-100) *after* the recommended investments are implemented. It reflects the risk reduction achieved by the new initiatives."},
	"threats":    {Title: "Projected Incident Reduction", Text: "This is the AI's estimate of the percentage reduction in security incidents (like data breaches or downtime) you can expect over the next year as a result of implementing the proposed investment plan."},
	"rosi":       {Title: "Return on Security Investment (ROSI)", Text: "ROSI is a percentage calculated by the AI to estimate the financial value of your security plan. It compares the cost of the investment against the potential financial losses from security incidents that are now avoided."},
	"compliance": {Title: "Compliance Uplift", Text: "This metric represents the AI's estimate of how much your recommended security plan will improve your organization's posture against common regulatory standards (like GDPR or HIPAA), particularly in relation to your stated security goals."},
	"budget":     {Title: "New Budget", Text: "This shows the total annual budget you provided for the analysis. The 'Investment Allocation' chart on the dashboard breaks down how the AI recommends distributing this budget across different security initiatives."},
	"trend":      {Title: "Risk Reduction Trend", Text: "This chart shows the AI's projection of your organization's overall risk score over the next six months as you implement the recommended security plan. It illustrates the expected positive impact of your investment over time."},
	"exposure":   {Title: "Threat Exposure Reduction", Text: "The AI's estimate of the percentage reduction in your organization's attack surface and overall exposure to external threats based on the recommended investments."},
	"attr":       {Title: "ATTR Improvement", Text: "The estimated percentage improvement (reduction) in the Average Time to Remediate (ATTR) vulnerabilities after implementing the new tools and procedures."},
	"maturity":   {Title: "Security Maturity Level", Text: "The AI's assessment of your organization's projected cybersecurity maturity level (e.g., 'Level 1 - Initial' to 'Level 5 - Optimizing') after the investments are made."},
	"focus":      {Title: "Primary Focus Area", Text: "The AI has identified this as the single most critical area for investment from the recommended plan, likely to yield the highest risk reduction."},
}
