package project

import "fmt"

func manuscriptTemplate(opts InitOptions) string {
	return fmt.Sprintf(`# %s

**By %s**

---

## Part I: Foundation

### Chapter 1: The Problem

[Start with a compelling anecdote or case study]

[Present data showing the scale of the problem]

[Explain why current solutions fall short]

---

### Chapter 2: The Science Behind It

[Introduce the scientific foundation]

[Review key research findings]

[Build theoretical framework]

---

### Chapter 3: Why Current Approaches Fail

[Analyze existing solutions]

[Present empirical evidence of limitations]

[Set stage for your framework]

---

## Part II: The Framework

### Chapter 4: [Principle 1]

**Hypothesis:** [Your testable claim]

**Evidence:** [Cite research or your experiments]

**Application:** [How developers use this]

**Example:** [Real-world case study]

---

### Chapter 5: [Principle 2]

[Repeat structure]

---

### Chapter 6: [Principle 3]

[Repeat structure]

---

## Part III: Application

### Chapter 7: For Individual Developers

[Practical tactics and tools]

---

### Chapter 8: For Teams

[Team-level practices]

---

### Chapter 9: For Organizations

[Organizational patterns]

---

## Part IV: Advanced Topics

### Chapter 10: Edge Cases & Limitations

[When the framework doesn't apply]

[Acknowledge limitations honestly]

---

### Chapter 11: Future Directions

[Research needed]

[Emerging trends]

[Open questions]

---

## Appendices

### Appendix A: Experimental Methodology

[Detailed experimental protocols]

---

### Appendix B: Statistical Analysis

[Detailed statistical results]

---

### Appendix C: Resources & Tools

[Links to tools, datasets, further reading]

---

## References

[Bibliography will be auto-generated]
`, opts.Title, opts.Author)
}

const trackerTemplate = `# Experiment Tracker

## Planned Experiments

| ID | Hypothesis | Status | Start Date | End Date | Participants |
|----|------------|--------|------------|----------|--------------|
| E01 | [Your hypothesis] | Planned | TBD | TBD | TBD |

## In Progress

| ID | Hypothesis | Started | Progress | Notes |
|----|------------|---------|----------|-------|
| - | - | - | - | - |

## Completed

| ID | Hypothesis | Result | P-value | Effect Size | Conclusion |
|----|------------|--------|---------|-------------|------------|
| - | - | - | - | - | - |

## Notes

- Add notes about experimental findings
- Track issues or unexpected results
- Document lessons learned
`

func readmeTemplate(opts InitOptions) string {
	return fmt.Sprintf(`# %s

**Author:** %s
**Topic:** %s
**Target:** %d pages

## Project Structure

`+"```"+`
├── manuscript.md             # Main manuscript
├── book_config.yaml          # Configuration
├── outputs/                  # Generated reports
│   ├── research/             # Literature synthesis
│   ├── experiment_design/    # Experimental protocols
│   ├── data_analysis/        # Statistical results
│   ├── figures/              # Charts and graphs
│   └── chapters/             # Drafted chapters
├── experiments/              # Experiment tracking
├── data/                     # Raw data
└── references/               # Bibliography
`+"```"+`

## Workflow

1. **Research:** bookforge research -query "your topic"
2. **Design experiments:** bookforge design-experiment -hypothesis "your claim"
3. **Run experiments** (do this yourself)
4. **Write chapters:** bookforge write-chapter -chapter 4 -title "..." -outline outline.md
5. **Validate:** bookforge validate
6. **Humanize:** bookforge humanize
7. **Export:** bookforge export -format pdf

## Status

- [ ] Research phase
- [ ] Experiments designed
- [ ] Data collected
- [ ] Chapters written
- [ ] Arguments validated
- [ ] Narrative polished
- [ ] Final export

## Notes

[Your project notes]
`, opts.Title, opts.Author, opts.Topic, opts.TargetPages)
}
