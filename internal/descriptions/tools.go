package descriptions

// Tool descriptions with practical examples and use cases

const (
	FormMapFieldsDescription = `Map already-recognized OCR text onto the structured fields of a known form layout.

**When to use:** You have raw OCR output from a scanned correction-request form and know its form-type code.

**Why it's useful:** Applies the per-form-type extraction rules (tag spans, checkbox resolution, regex markers) and returns every field, with a "Not Found" sentinel wherever a tag was absent from the noisy text.

**Examples:**
• Map a 01721 trade correction: pass the OCR text and form_type "01721"
• Re-run field mapping after correcting OCR text by hand

**Best practices:** Unknown form-type codes are not an error; every field simply comes back as "Not Found".`

	FormScanPDFDescription = `Run the full pipeline on a single scanned PDF: render, recognize, and map fields.

**When to use:** You have a scanned form on disk and want its structured fields in one call.

**Why it's useful:** Handles page rendering at OCR resolution, Tesseract recognition and field mapping without any manual intermediate steps.

**Examples:**
• Extract fields from a single correction form: path "/scans/form-0042.pdf", form_type "01848"

**Best practices:** The first page is authoritative; multi-page attachments are ignored. Use form_types_list to discover supported codes.`

	FormTypesListDescription = `List the form-type codes the rule table supports.

**When to use:** You need to know which scanned form layouts can be mapped before submitting documents.`

	ServerInfoDescription = `Get server information, supported form types, and usage guidance.

**When to use:** First contact with the server, or when deciding which tool fits a task.`
)
