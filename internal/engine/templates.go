package engine

import "github.com/floeworks/floe/pkg/api"

// Templates returns predefined workflow definitions that callers can adjust
// and submit to CreateWorkflow
func Templates() []*api.CreateWorkflowRequest {
	return []*api.CreateWorkflowRequest{
		{
			Name:        "Full-Stack Development Pipeline",
			Description: "Complete pipeline from blueprint to deployment",
			Steps: []*api.WorkflowStep{
				{
					ID:   "generate_frontend",
					Name: "Generate Frontend Code",
					Type: api.StepTypeAIGeneration,
					Config: api.Args{
						"language":  "typescript",
						"framework": "react",
					},
				},
				{
					ID:   "generate_backend",
					Name: "Generate Backend Code",
					Type: api.StepTypeAIGeneration,
					Config: api.Args{
						"language":  "go",
						"framework": "gin",
					},
				},
				{
					ID:   "code_review",
					Name: "Code Review",
					Type: api.StepTypeCodeReview,
					Dependencies: []string{
						"generate_frontend", "generate_backend",
					},
				},
				{
					ID:           "run_tests",
					Name:         "Run Tests",
					Type:         api.StepTypeTesting,
					Dependencies: []string{"code_review"},
				},
				{
					ID:   "deploy_staging",
					Name: "Deploy to Staging",
					Type: api.StepTypeDeployment,
					Config: api.Args{
						"environment": "staging",
					},
					Dependencies: []string{"run_tests"},
				},
				{
					ID:   "notify_team",
					Name: "Notify Team",
					Type: api.StepTypeNotification,
					Config: api.Args{
						"message":    "Deployment completed successfully",
						"recipients": []any{"team@example.com"},
					},
					Dependencies: []string{"deploy_staging"},
				},
			},
		},
		{
			Name:        "Generate and Review",
			Description: "Generate code with two providers and compare",
			Steps: []*api.WorkflowStep{
				{
					ID:   "generate_primary",
					Name: "Generate with Primary Provider",
					Type: api.StepTypeAIGeneration,
					Config: api.Args{
						"provider": "primary",
					},
				},
				{
					ID:   "generate_secondary",
					Name: "Generate with Secondary Provider",
					Type: api.StepTypeAIGeneration,
					Config: api.Args{
						"provider": "secondary",
					},
				},
				{
					ID:   "compare_results",
					Name: "Compare Results",
					Type: api.StepTypeDataProcessing,
					Config: api.Args{
						"operation": "compare",
					},
					Dependencies: []string{
						"generate_primary", "generate_secondary",
					},
				},
				{
					ID:           "quality_review",
					Name:         "Quality Review",
					Type:         api.StepTypeCodeReview,
					Dependencies: []string{"compare_results"},
				},
			},
		},
	}
}
