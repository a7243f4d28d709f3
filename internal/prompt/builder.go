// Package prompt собирает текст запроса к модели из параметров формы.
// Оба вида анализа делят общую преамбулу и отличаются только хвостовой инструкцией
// с форматом JSON — правка преамбулы одинаково влияет на оба.
package prompt

import (
	"fmt"
	"strings"

	"github.com/xela07ax/cyberinvest-pro/internal/domain"
)

// NoInventory подставляется вместо пустой таблицы активов.
const NoInventory = "No custom asset inventory provided."

const inventoryHeader = "| Name | Type | Importance (0-5) |\n|---|---|---|\n"

const basePromptTemplate = `Act as an Cybersecurity Investment Analyst taking below as Inputs
Company Segment: %s
Company Size: %s
Security Budget: %d(In Pounds)
End goal: %s
Asset inventory as below:
%s

Analyze the risk for above inputs and utilize below as data for generating response

### Project Overview and Motivation
The project operates within the field of **cybersecurity economics**, which studies how organizations should invest in their digital defense. The central problem is twofold: organizations often don't invest *enough* in cybersecurity, and the money they do spend is frequently not allocated to the most effective security measures. This challenge is magnified by constantly growing organizational complexity and an ever-expanding number of potential attack vectors, making manual decision-making impractical and unreliable.
While sophisticated mathematical optimization models exist to solve this problem, they are typically inaccessible to decision-makers who lack specialized expertise in optimization theory and programming. This creates a critical gap between academic solutions and real-world business needs.

### Core Objective: A User-Friendly Decision-Support Tool
The primary goal of this project is to bridge that gap by developing a **user-friendly decision-support tool**, preferably as an interactive **web application**. The tool is designed specifically for managers and security professionals who may not be optimization experts, enabling them to leverage advanced analytical methods for their security planning.
The application will have two main functions:
1.  **Evaluation of Current Security Posture:** Users will be able to input their existing portfolio of security controls (e.g., firewalls, antivirus software, employee training programs). The tool will then analyze this portfolio to evaluate its overall effectiveness against a modeled threat landscape.
2.  **Actionable Recommendations for Optimization:** After the evaluation, the tool will provide concrete, actionable recommendations for improvement. These recommendations will not just be a single "best" solution but will represent an **optimized and resilient portfolio** that strategically allocates the security budget. A key feature is the model's ability to **account for uncertainties**, such as the likelihood of a specific attack or the evolving capabilities of adversaries.

### Theoretical Foundations (Based on References)
The tool's "intelligence" will be based on state-of-the-art academic research to ensure the recommendations are robust and scientifically sound. The provided references suggest the project will likely incorporate advanced models such as:
* **Scalable Min-Max Optimisation:** This method finds the best possible security strategy even when assuming a worst-case attack scenario, ensuring resilience.
* **Probabilistic Attack Graphs:** These models map out potential paths an attacker could take through a network, assigning probabilities to each step to quantify risk more accurately.
* **Bayesian Stackelberg Games:** This game-theoretic approach models the strategic interaction between a defender and an attacker. It is particularly useful for making decisions under uncertainty, where the defender has incomplete information about the attacker.
By integrating these advanced concepts into an accessible web tool, the project aims to empower organizations to make smarter, data-driven, and cost-effective cybersecurity investment decisions.`

// AllocationInstruction фиксирует формат ответа для allocation-анализа.
const AllocationInstruction = `Your response MUST be a single valid JSON object that strictly follows this structure: {"dashboard_metrics": {"high_risk_assets_addressed": {"addressed": /* (Number) */, "total": /* (Number) */, "addressed_asset_names": [/* (Array of Strings) */]}, "new_risk_score": /* (Number) */, "projected_incidents_reduced": /* (Number) */, "return_on_security_investment": /* (Number) */, "compliance_uplift": /* (Number) */, "risk_reduction_trend": [/* (Array of 6 Numbers) */], "threat_exposure_reduction": /* (Number) */, "attr_improvement": /* (Number) */, "security_maturity_level": "/* (String) */", "primary_focus_area": "/* (String) */"}, "initiatives": [{"initiative": "/* (String) */", "percentage": /* (Number) */, "description": "/* (String) */", "rationale": "/* (String) */", "nist_functions": [/* (Array of Strings) e.g., "Protect", "Detect" */]}]}`

// PredictiveInstruction фиксирует формат ответа для predictive-анализа.
const PredictiveInstruction = `Your response MUST be a single valid JSON object with a single key "risk_assessment". Its value must be an array of objects, each with these keys: "domain" (one of 5 specific values), "risk_score" (0-100), "mitigation_percent" (0-100), "future_issues" (string), and "mitigation_steps" (array of strings).`

// Build возвращает полный текст промпта. Чистая функция, ошибок нет.
func Build(kind domain.AnalysisKind, req domain.AnalysisRequest) string {
	return Base(req) + "\n\n" + instruction(kind)
}

// Base — общая преамбула: роль, входные данные, теоретическая рамка.
func Base(req domain.AnalysisRequest) string {
	return fmt.Sprintf(basePromptTemplate,
		req.Industry,
		req.CompanySize,
		req.BudgetMinorUnits,
		req.PrimaryGoal,
		InventoryTable(req.Inventory),
	)
}

// InventoryTable рендерит активы таблицей с фиксированными колонками.
func InventoryTable(assets []domain.AssetRecord) string {
	if len(assets) == 0 {
		return NoInventory
	}

	var b strings.Builder
	b.WriteString(inventoryHeader)
	for _, a := range assets {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", a.Name, a.Type, a.Importance)
	}
	return b.String()
}

func instruction(kind domain.AnalysisKind) string {
	if kind == domain.KindPredictive {
		return PredictiveInstruction
	}
	return AllocationInstruction
}
