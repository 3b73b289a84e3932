package schema

// Record kinds of the renovation file management domain.
var (
	// User is a platform user: internal staff or a client contact.
	User = RecordSchema{
		Kind: "User",
		Fields: []Field{
			required("name", String, "Full name"),
			required("email", Email, "Email address"),
			defaulted("role", Enum("admin", "manager", "auditor", "client"), "client", "User role"),
			defaulted("is_active", Boolean, true, "Whether user is active"),
		},
	}

	// Client is the company or person a project is carried out for.
	Client = RecordSchema{
		Kind: "Client",
		Fields: []Field{
			required("name", String, "Client name or company"),
			optional("contact_email", Email, "Primary contact email"),
			optional("contact_phone", String, "Primary contact phone"),
			optional("address", String, "Postal address"),
			optional("notes", String, "Internal notes"),
		},
	}

	// Document is file metadata; the file itself lives in external storage.
	Document = RecordSchema{
		Kind: "Document",
		Fields: []Field{
			optional("project_id", String, "Related project id"),
			required("title", String, "Document title"),
			defaulted("doc_type", Enum(
				"quote",
				"invoice",
				"contract",
				"photo",
				"audit_report",
				"cee_attachment",
				"mar_attachment",
				"other",
			), "other", "Type of the document"),
			optional("url", String, "Public/secure URL to the file"),
			optional("version", Integer, "Version number").withDefault(int64(1)).atLeast(1),
			optional("notes", String, "Notes or description"),
		},
	}

	Project = RecordSchema{
		Kind: "Project",
		Fields: []Field{
			required("title", String, "Project title"),
			optional("client_id", String, "Client reference (id)"),
			optional("manager_id", String, "Assigned project manager (user id)"),
			defaulted("status", Enum(
				"draft",
				"in_progress",
				"awaiting_documents",
				"awaiting_approval",
				"completed",
				"archived",
			), "draft", "Overall project status"),
			optional("start_date", Date, "Planned start date"),
			optional("due_date", Date, "Planned due date"),
			optional("budget_eur", Float, "Budget in EUR").atLeast(0),
			optional("description", String, "Short description"),
		},
	}

	// Task is a lightweight workflow item attached to a project.
	Task = RecordSchema{
		Kind: "Task",
		Fields: []Field{
			required("project_id", String, "Related project id"),
			required("title", String, "Task title"),
			optional("assignee_id", String, "User responsible"),
			optional("due_date", Date, "Due date"),
			defaulted("status", Enum("todo", "in_progress", "blocked", "done"), "todo", ""),
		},
	}

	// CEEApplication tracks an energy savings certificate application.
	CEEApplication = RecordSchema{
		Kind: "CEEApplication",
		Fields: []Field{
			required("project_id", String, "Related project id"),
			defaulted("status", Enum("draft", "submitted", "awaiting_approval", "approved", "rejected"), "draft", ""),
			optional("submission_date", Date, ""),
			optional("approval_date", Date, ""),
			optional("cee_volume_kwh", Float, "CEE volume (kWh cumac)").atLeast(0),
			optional("cee_value_eur", Float, "Estimated/actual value in EUR").atLeast(0),
		},
	}

	// MARApplication tracks a MaPrimeRénov' grant application.
	MARApplication = RecordSchema{
		Kind: "MARApplication",
		Fields: []Field{
			required("project_id", String, "Related project id"),
			defaulted("status", Enum(
				"pre_application",
				"submitted",
				"awaiting_instruction",
				"instruction_in_progress",
				"grant_awarded",
				"payment_received",
			), "pre_application", ""),
			optional("amount_eur", Float, "").atLeast(0),
			optional("last_update", DateTime, ""),
		},
	}

	// Audit tracks an energy audit of a project.
	Audit = RecordSchema{
		Kind: "Audit",
		Fields: []Field{
			required("project_id", String, "Related project id"),
			defaulted("status", Enum("scheduled", "in_progress", "report_generated", "client_reviewed"), "scheduled", ""),
			optional("scheduled_date", Date, ""),
			optional("auditor_id", String, ""),
			optional("report_document_id", String, "Document id for audit report"),
		},
	}
)

// Default is the process-wide registry of every record kind.
var Default = mustRegistry(
	User,
	Client,
	Document,
	Project,
	Task,
	CEEApplication,
	MARApplication,
	Audit,
)

func mustRegistry(schemas ...RecordSchema) *Registry {
	r, err := NewRegistry(schemas...)
	if err != nil {
		panic(err)
	}
	return r
}
