// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import "fmt"

// systemRole frames every backend call.
const systemRole = "You are an assistant that analyzes tender documentation."

// SectionHeadings lists the mandatory headings of the final summary, in
// output order. The final prompt instructs the backend to keep these lines
// verbatim regardless of the summary language, so downstream formatting can
// recognize them.
var SectionHeadings = []string{
	"About the procurement:",
	"Procedure type:",
	"Territorial scope:",
	"Unit economics:",
	"Contractor requirements:",
	"Customer contact details:",
	"Core requirements:",
	"Participation documents:",
	"Key deadlines:",
	"Money and guarantees:",
	"Risks and open questions:",
}

// TitlePrefix starts the title line prepended when a label is supplied.
const TitlePrefix = "File: "

// FailuresHeading starts the addendum listing documents that could not be
// processed. It is appended by the batch collector, not the backend, but
// lives here so formatters treat it like any other heading.
const FailuresHeading = "Unprocessed files:"

// chunkPrompt builds the instruction for one partial-summary call. The index
// and total tell the backend it is looking at a fragment, so it reports
// absent data instead of inventing completeness.
func chunkPrompt(idx, total int) string {
	return fmt.Sprintf(
		"You are analyzing part %d of %d of a tender document package. "+
			"Return facts only. If a data point is absent in this part, say so.\n\n"+
			"CRITICAL: extract contractor eligibility requirements as completely as possible, "+
			"in particular:\n"+
			"- registration requirements (regional registration, state registries)\n"+
			"- required legal form (sole proprietor, LLC, other)\n"+
			"- self-regulatory organization membership, permits, liability tiers\n"+
			"- licenses, accreditations\n"+
			"- contracts with landfills / disposal or processing facilities\n"+
			"- equipment, personnel, experience and comparable-contract requirements\n"+
			"- the documents that prove each of the above\n\n"+
			"Briefly extract:\n"+
			"1) Subject of the procurement\n"+
			"2) Deliverables expected from the contractor\n"+
			"3) Contractor eligibility requirements (detailed, this is the key block)\n"+
			"4) Deadlines and stages\n"+
			"5) Financial terms (starting price, securities, penalties)\n"+
			"6) Territorial scope: where the work is actually performed, loading and "+
			"unloading points, landfills or delivery sites (not the customer's legal address)\n"+
			"7) Procedure type: quotation, auction, open tender, or other\n"+
			"8) Unit economics: rates per tonne and/or per cubic meter, plus the price of one "+
			"30 m3 truck (if a per-m3 price exists: truck_price = price_per_m3 * 30; if only a "+
			"per-kg price exists: price_per_tonne = price_per_kg * 1000)\n"+
			"9) Customer or customer-representative contact details: name, role, phone, email, "+
			"department, contact hours, and where in the document the contacts were found\n"+
			"10) Key risks and ambiguities",
		idx, total,
	)
}

// finalPrompt builds the instruction for the final-summary call. Every
// section heading must appear in the output even when the underlying data is
// missing; absence has to be stated explicitly.
func finalPrompt(language string) string {
	prompt := fmt.Sprintf(
		"Produce the final summary in this language: %s.\n"+
			"Style: businesslike, short, no filler.\n"+
			"Output strictly in this format, keeping each heading line below verbatim "+
			"(translate the content, never the headings):\n",
		language,
	)
	for _, h := range SectionHeadings {
		prompt += h + "\n"
	}
	prompt += "Under 'Contractor requirements:' list separately:\n" +
		"- registration (including regional restrictions)\n" +
		"- legal form (sole proprietor / LLC / other)\n" +
		"- self-regulatory organization membership and permits\n" +
		"- licenses\n" +
		"- contracts with landfills / disposal facilities\n" +
		"- experience, equipment, personnel\n" +
		"- which documents prove each point\n" +
		"Under 'Unit economics:' state separately:\n" +
		"- price per tonne\n" +
		"- price per cubic meter\n" +
		"- price of one 30 m3 truck (if it can be computed)\n" +
		"Under 'Customer contact details:' state:\n" +
		"- name\n" +
		"- role\n" +
		"- phone\n" +
		"- email\n" +
		"- where in the document they appear (section/clause)\n" +
		"If no contacts exist, write exactly that: 'No contacts found in the documents'.\n" +
		"If a section has no data, state the absence explicitly. Never invent anything."
	return prompt
}
