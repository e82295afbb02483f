package catalog

import "github.com/patric-chuzhbe/internhub/internal/models"

// DefaultListings returns the canonical internship set the catalog is seeded
// with on start.
func DefaultListings() []*models.Listing {
	return []*models.Listing{
		{
			ID:          1,
			Title:       "Frontend Web Developer",
			Domain:      "Web Development",
			Description: "Work with modern frontend frameworks like React to build stunning user interfaces. Collaborate with UI/UX designers and backend developers to create a seamless user experience.",
			Duration:    "3 Months",
			Stipend:     "Performance-based",
			Skills:      models.SkillList{"HTML", "CSS", "JavaScript", "React", "Tailwind CSS", "Git"},
		},
		{
			ID:          2,
			Title:       "Backend Developer (Django)",
			Domain:      "Backend Development",
			Description: "Design and implement server-side logic, manage databases, and create robust APIs using Python and Django. A great opportunity to learn about scalability and security.",
			Duration:    "3 Months",
			Stipend:     "Performance-based",
			Skills:      models.SkillList{"Python", "Django", "REST APIs", "PostgreSQL", "Docker"},
		},
		{
			ID:          3,
			Title:       "Mobile App Developer (React Native)",
			Domain:      "App Development",
			Description: "Develop cross-platform mobile applications for iOS and Android using React Native. You will be responsible for the full development lifecycle from concept to deployment.",
			Duration:    "2 Months",
			Stipend:     "Performance-based",
			Skills:      models.SkillList{"React Native", "JavaScript", "Redux", "APIs", "Firebase"},
		},
		{
			ID:          4,
			Title:       "Data Science Intern",
			Domain:      "Data Science",
			Description: "Analyze large datasets to extract meaningful insights. Build predictive models and use machine learning techniques to solve real-world problems. Work with tools like Pandas, NumPy, and Scikit-learn.",
			Duration:    "4 Months",
			Stipend:     "Performance-based",
			Skills:      models.SkillList{"Python", "Pandas", "NumPy", "Scikit-learn", "SQL", "Jupyter"},
		},
		{
			ID:          5,
			Title:       "UI/UX Design Intern",
			Domain:      "Design",
			Description: "Create intuitive and visually appealing user interfaces. Conduct user research, create wireframes and prototypes, and work closely with developers to implement your designs.",
			Duration:    "2 Months",
			Stipend:     "Performance-based",
			Skills:      models.SkillList{"Figma", "Adobe XD", "User Research", "Prototyping", "Wireframing"},
		},
		{
			ID:          6,
			Title:       "Cloud Engineering Intern (AWS)",
			Domain:      "Cloud Computing",
			Description: "Gain hands-on experience with Amazon Web Services (AWS). Work on deploying, managing, and scaling applications in the cloud. Learn about services like EC2, S3, Lambda, and RDS.",
			Duration:    "3 Months",
			Stipend:     "Performance-based",
			Skills:      models.SkillList{"AWS", "Linux", "Networking", "Terraform", "CI/CD"},
		},
	}
}
