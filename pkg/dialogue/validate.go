package dialogue

import "fmt"

// Validate checks a dialogue graph for problems a designer would want to fix:
// duplicate node ids, branches to missing nodes and malformed requirements.
// A branch to a missing node is legal at runtime (it ends the conversation)
// but is almost always a typo.
func Validate(nodes []Node) []error {
	var errs []error
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("node with text %q has no id", n.Text))
			continue
		}
		if ids[n.ID] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID))
		}
		ids[n.ID] = true
	}

	ref := func(from, what, target string) {
		if target != "" && !ids[target] {
			errs = append(errs, fmt.Errorf("node %s: %s points to missing node %s", from, what, target))
		}
	}

	for _, n := range nodes {
		respIDs := make(map[string]bool, len(n.Responses))
		for _, r := range n.Responses {
			if respIDs[r.ID] {
				errs = append(errs, fmt.Errorf("node %s: duplicate response id %s", n.ID, r.ID))
			}
			respIDs[r.ID] = true
			ref(n.ID, "response "+r.ID, r.NextNodeID)
			for _, req := range r.Requirements {
				if err := req.Validate(); err != nil {
					errs = append(errs, fmt.Errorf("node %s response %s: %w", n.ID, r.ID, err))
				}
			}
			if r.IsQuestAccept && r.IsQuestRefuse {
				errs = append(errs, fmt.Errorf("node %s response %s: both accepts and refuses a quest", n.ID, r.ID))
			}
			if (r.IsQuestAccept || r.IsQuestRefuse) && n.QuestID == "" {
				errs = append(errs, fmt.Errorf("node %s response %s: quest response on a node without quest_id", n.ID, r.ID))
			}
		}
		if sc := n.SkillCheck; sc != nil {
			if sc.Ability == "" {
				errs = append(errs, fmt.Errorf("node %s: skill check has no ability", n.ID))
			}
			if sc.SuccessNodeID == "" || sc.FailureNodeID == "" {
				errs = append(errs, fmt.Errorf("node %s: skill check needs success and failure nodes", n.ID))
			}
			ref(n.ID, "skill check success", sc.SuccessNodeID)
			ref(n.ID, "skill check failure", sc.FailureNodeID)
			ref(n.ID, "skill check critical success", sc.CriticalSuccessNodeID)
			ref(n.ID, "skill check critical failure", sc.CriticalFailureNodeID)
		}
	}
	return errs
}
