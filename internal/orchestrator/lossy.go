package orchestrator

import "github.com/alevsk/shapeshift/internal/codec"

type conversion struct {
	from, to codec.Format
}

// lossyConversions lists the pairs whose source constructs have no
// representation in the target, with what is at risk.
var lossyConversions = map[conversion]string{
	{codec.FormatXML, codec.FormatJSON}: "xml attributes become plain keys",
	{codec.FormatXML, codec.FormatYAML}: "xml namespaces and attributes become plain keys",
}

// lossWarning returns the warning for a lossy pair, or "" when the
// conversion preserves the document
func lossWarning(from, to codec.Format) string {
	if from == to {
		return ""
	}
	risk, ok := lossyConversions[conversion{from, to}]
	if !ok {
		return ""
	}
	return "conversion " + string(from) + "->" + string(to) + " may result in data loss: " + risk
}
