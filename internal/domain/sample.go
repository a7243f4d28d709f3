package domain

// SampleBudget задает бюджет дашборда до первого анализа.
const SampleBudget int64 = 750000

// SampleAnalysisJSON — пример ответа модели. Им дашборд заполняется при старте,
// он же служит эталоном формата в тестах.
const SampleAnalysisJSON = `{
  "dashboard_metrics": {
    "high_risk_assets_addressed": {"addressed": 2, "total": 3},
    "new_risk_score": 52,
    "projected_incidents_reduced": 25,
    "return_on_security_investment": 150,
    "compliance_uplift": 30,
    "addressed_asset_names": ["Primary Web Server", "Customer Database"],
    "risk_reduction_trend": [90, 82, 75, 68, 60, 52],
    "threat_exposure_reduction": 18,
    "attr_improvement": 22,
    "security_maturity_level": "Level 2 (Managed)",
    "primary_focus_area": "Endpoint Security"
  },
  "initiatives": [
    {
      "initiative": "Advanced Endpoint Security",
      "percentage": 40,
      "description": "Deploys next-gen antivirus and EDR solutions to protect laptops and endpoints from malware and ransomware.",
      "rationale": "Chosen because the inventory contains high-importance endpoints, which are primary targets for ransomware attacks.",
      "nist_functions": ["Protect", "Detect", "Respond"]
    },
    {
      "initiative": "Cloud Security Posture Management",
      "percentage": 35,
      "description": "Scans and hardens cloud configurations (like in AWS or Azure) to prevent common misconfigurations that lead to breaches.",
      "rationale": "Addresses the high importance of the 'Primary Web Server' and 'Customer Database' which are likely cloud-hosted.",
      "nist_functions": ["Identify", "Protect"]
    },
    {
      "initiative": "Employee Security Training",
      "percentage": 25,
      "description": "Conducts regular, engaging training and phishing simulations to reduce the risk of human error.",
      "rationale": "Reduces overall risk by strengthening the human element of security, which affects all assets.",
      "nist_functions": ["Protect"]
    }
  ]
}`

// DefaultRiskTrend подставляется в график, если модель не вернула risk_reduction_trend.
var DefaultRiskTrend = []float64{90, 82, 75, 68, 60, 52}

// SampleRiskAssessmentJSON — пример ответа predictive-анализа для демо-режима.
const SampleRiskAssessmentJSON = `{"risk_assessment": [
  {"domain": "Critical Infrastructure", "risk_score": 72, "mitigation_percent": 45, "future_issues": "Ransomware targeting unpatched servers could halt operations.", "mitigation_steps": ["Patch internet-facing servers monthly", "Segment production networks"]},
  {"domain": "Data Assets", "risk_score": 81, "mitigation_percent": 38, "future_issues": "Customer records may be exfiltrated through weak database access controls.", "mitigation_steps": ["Encrypt customer data at rest", "Review database access quarterly"]},
  {"domain": "Human Resources", "risk_score": 64, "mitigation_percent": 55, "future_issues": "Phishing remains the most likely initial access vector.", "mitigation_steps": ["Run quarterly phishing simulations"]},
  {"domain": "Network Perimeter", "risk_score": 48, "mitigation_percent": 60, "future_issues": "Exposed remote access services attract credential stuffing.", "mitigation_steps": ["Enforce MFA on VPN", "Close unused ports"]},
  {"domain": "Third-party Services", "risk_score": 57, "mitigation_percent": 40, "future_issues": "Supplier compromise could expose shared credentials.", "mitigation_steps": ["Add security clauses to vendor contracts"]}
]}`
