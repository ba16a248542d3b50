package memory

import "legisbase/internal/core"

// DefaultBills returns the compiled-in bill list used when no seed file is
// configured.
func DefaultBills() []core.Bill {
	return []core.Bill{
		{
			ID:               1,
			Title:            "Climate Action and Investment Act",
			BillNumber:       "HR-2024-001",
			Status:           "Under Review",
			Summary:          "Comprehensive legislation addressing climate change through clean energy investments and carbon reduction targets.",
			AIInterpretation: "This bill focuses on transitioning to renewable energy sources while creating economic incentives for green technology adoption. Key provisions include tax credits for solar installations and stricter emissions standards for industrial facilities.",
			Tags:             []string{"environment", "energy", "economy"},
			DateIntroduced:   "2024-01-15",
			Sponsor:          "Rep. Sarah Johnson",
		},
		{
			ID:               2,
			Title:            "Digital Privacy Protection Act",
			BillNumber:       "S-2024-042",
			Status:           "Passed Senate",
			Summary:          "Establishes comprehensive data protection requirements for tech companies and enhances user privacy rights.",
			AIInterpretation: "This legislation creates a framework similar to GDPR, requiring explicit consent for data collection and giving users the right to delete their personal information. Companies face significant penalties for data breaches.",
			Tags:             []string{"privacy", "technology", "consumer protection"},
			DateIntroduced:   "2024-02-03",
			Sponsor:          "Sen. Michael Chen",
		},
		{
			ID:               3,
			Title:            "Healthcare Accessibility Enhancement Act",
			BillNumber:       "HR-2024-078",
			Status:           "In Committee",
			Summary:          "Expands healthcare coverage and reduces prescription drug costs through Medicare negotiation powers.",
			AIInterpretation: "The bill allows Medicare to negotiate drug prices directly with pharmaceutical companies, potentially reducing costs by 20-40%. It also expands telehealth services and increases funding for rural healthcare facilities.",
			Tags:             []string{"healthcare", "medicare", "prescription drugs"},
			DateIntroduced:   "2024-03-12",
			Sponsor:          "Rep. Maria Rodriguez",
		},
	}
}
