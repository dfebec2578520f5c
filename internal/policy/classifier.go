package policy

// Probe reports whether a module file with the given name exists next to the
// image under analysis.
type Probe func(name string) bool

// Classification is the outcome of running the rule chain over one module
type Classification struct {
	Category  Category
	Flags     Flags
	Rule      string
	DelayLoad bool
}

// Classifier runs the ordered rule chain. A nil probe never finds user modules.
type Classifier struct {
	rules []Rule
	probe Probe
}

// NewClassifier returns a classifier over the built-in rules
func NewClassifier(probe Probe) *Classifier {
	return &Classifier{rules: rules, probe: probe}
}

// Classify assigns a category to one imported module name. The result depends
// only on the arguments and on what the probe reports.
func (c *Classifier) Classify(name string, target Target, delayLoad bool) Classification {
	for _, r := range c.rules {
		if r.Match(name) {
			return Classification{
				Category:  r.Category,
				Flags:     r.flagsFor(target),
				Rule:      r.Name,
				DelayLoad: delayLoad,
			}
		}
	}

	if c.probe != nil && c.probe(name) {
		return Classification{Category: CategoryUser, Rule: "user", DelayLoad: delayLoad}
	}
	return Classification{Category: CategoryUnknown, DelayLoad: delayLoad}
}

// InferTarget picks a target from the first module, in the order given, that
// belongs to one of the Direct3D generation tables. It returns
// TargetUnspecified and an empty reason when none does.
func InferTarget(names []string) (Target, string) {
	for _, name := range names {
		switch {
		case d3dLegacy.Contains(name):
			return TargetPC, "Use of legacy Direct3D implies PC target"
		case d3dStock.Contains(name):
			return TargetPC, "Use of stock Direct3D implies PC target"
		case d3dXboxOne.Contains(name):
			return TargetXboxOne, "Use of Direct3D 12.X implies Xbox One target"
		case d3dScarlett.Contains(name):
			return TargetScarlett, "Use of Direct3D 12.X_S implies Scarlett target"
		}
	}
	return TargetUnspecified, ""
}
