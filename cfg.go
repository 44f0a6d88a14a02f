package latsim

// cfg.go holds the run-time parameter machinery: serializable parameter
// records that are matched against hops by attribute and applied
// most-general-first, so that a broad assignment (e.g. every fiber hop)
// can be refined by a narrower one (a named hop) later in the order.

import (
	"encoding/json"
	"gopkg.in/yaml.v3"
	"os"
	"sort"
)

// An AttrbStruct names one attribute a parameter record must match on a hop.
// The name "*" is a wildcard matching every hop.
type AttrbStruct struct {
	AttrbName  string `json:"attrbname" yaml:"attrbname"`
	AttrbValue string `json:"attrbvalue" yaml:"attrbvalue"`
}

// An ExpParameter struct describes a parameter assignment, with a list of
// attributes all of which must be matched by a hop for the assignment to apply
type ExpParameter struct {
	// a set of attributes, all of which need to be matched by the hop
	Attributes []AttrbStruct `json:"attributes" yaml:"attributes"`

	// parameter name, e.g., "bandwidth", "queuing"
	Param string `json:"param" yaml:"param"`

	// string encoding of the value given the parameter
	Value string `json:"value" yaml:"value"`
}

// Eq reports whether two ExpParameters are identical in attributes,
// parameter, and value
func (epp *ExpParameter) Eq(cmpto *ExpParameter) bool {
	if epp.Param != cmpto.Param || epp.Value != cmpto.Value {
		return false
	}
	if CompareAttrbs(epp.Attributes, cmpto.Attributes) != 0 {
		return false
	}
	return true
}

// CompareAttrbs gives a total order on attribute lists, used when sorting
// parameter records to bring duplicates together
func CompareAttrbs(aL, bL []AttrbStruct) int {
	if len(aL) < len(bL) {
		return -1
	}
	if len(aL) > len(bL) {
		return 1
	}
	for idx, a := range aL {
		b := bL[idx]
		if a.AttrbName < b.AttrbName || (a.AttrbName == b.AttrbName && a.AttrbValue < b.AttrbValue) {
			return -1
		}
		if a.AttrbName > b.AttrbName || (a.AttrbName == b.AttrbName && a.AttrbValue > b.AttrbValue) {
			return 1
		}
	}
	return 0
}

// An ExpCfg struct holds a named list of parameter assignments
type ExpCfg struct {
	Name       string         `json:"name" yaml:"name"`
	Parameters []ExpParameter `json:"parameters" yaml:"parameters"`
}

// CreateExpCfg is an initialization constructor
func CreateExpCfg(name string) *ExpCfg {
	return &ExpCfg{Name: name, Parameters: make([]ExpParameter, 0)}
}

// AddParameter creates an ExpParameter from its arguments and appends it
func (excg *ExpCfg) AddParameter(attrbs []AttrbStruct, param, value string) {
	excg.Parameters = append(excg.Parameters, ExpParameter{Attributes: attrbs, Param: param, Value: value})
}

// ReadExpCfg deserializes a byte slice holding a representation of an ExpCfg
// struct, reading the named file when the byte slice is empty
func ReadExpCfg(filename string, useYAML bool, dict []byte) (*ExpCfg, error) {
	var err error

	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := ExpCfg{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}

// reorderExpParams puts parameter records in an order such that earlier
// elements have a broader range of application than later ones touching
// the same hop: wildcard records first, attribute-matched records next,
// and records naming a specific hop last.  This is the same idea as
// choosing the routing rule with the smallest subnet range when multiple
// rules apply to the same address.
func reorderExpParams(pL []ExpParameter) []ExpParameter {
	wc := []ExpParameter{}
	nm := []ExpParameter{}
	sg := []ExpParameter{}

	// assign wc, sg, or nm based on attribute
	for _, param := range pL {
		assigned := false
		for _, attrb := range param.Attributes {
			if attrb.AttrbName == "*" {
				wc = append(wc, param)
				assigned = true
				break
			} else if attrb.AttrbName == "name" {
				nm = append(nm, param)
				assigned = true
				break
			}
		}
		if !assigned {
			sg = append(sg, param)
		}
	}

	// wild card entries are identical in the attribute field, so order on the parameter
	sort.Slice(wc, func(i, j int) bool { return wc[i].Param < wc[j].Param })

	// sort the sg and nm elements by (Attributes, Param, Value) key
	byKey := func(list []ExpParameter) func(i, j int) bool {
		return func(i, j int) bool {
			compared := CompareAttrbs(list[i].Attributes, list[j].Attributes)
			if compared == -1 {
				return true
			} else if compared == 1 {
				return false
			}
			if list[i].Param < list[j].Param {
				return true
			}
			if list[i].Param > list[j].Param {
				return false
			}
			return list[i].Value < list[j].Value
		}
	}
	sort.Slice(sg, byKey(sg))
	sort.Slice(nm, byKey(nm))

	// pull them together with wc first, followed by sg, and finally nm
	wc = append(wc, sg...)
	wc = append(wc, nm...)

	// get rid of duplicates
	for idx := len(wc) - 1; idx > 0; idx = idx - 1 {
		if wc[idx].Eq(&wc[idx-1]) {
			wc = append(wc[:idx], wc[(idx+1):]...)
		}
	}

	return wc
}

// paramAttrbsMatch reports whether a paramObj matches every attribute of a
// parameter record.  A "*" attribute is a wild card and overrides all others.
func paramAttrbsMatch(pobj paramObj, attrbs []AttrbStruct) bool {
	for _, attrb := range attrbs {
		if attrb.AttrbName == "*" {
			return true
		}
		if !pobj.matchParam(attrb.AttrbName, attrb.AttrbValue) {
			return false
		}
	}
	return true
}

// applyExpCfg walks the reordered parameter list and applies each record to
// every registered paramObj whose attributes all match, resolving targets
// through the package lookup maps.  Observe that
//   - "*" denotes a wild card and overrides all other attributes
//   - a record matches only when every one of its attributes matches
//   - a name "Fred" is expressed as the attribute {name, Fred}, and such a
//     record is resolved directly through paramObjByName
func applyExpCfg(excg *ExpCfg) {
	if excg == nil {
		return
	}
	ordered := reorderExpParams(excg.Parameters)

	for _, param := range ordered {
		// a record naming its target needs no sweep over the map
		var named string
		for _, attrb := range param.Attributes {
			if attrb.AttrbName == "name" {
				named = attrb.AttrbValue
				break
			}
		}
		if len(named) > 0 {
			pobj, present := paramObjByName[named]
			if present && paramAttrbsMatch(pobj, param.Attributes) {
				pobj.setParam(param.Param, stringToValueStruct(param.Value))
			}
			continue
		}

		// record order carries the generality ranking, so the application
		// order across objects within one record does not matter
		for _, pobj := range paramObjByName {
			if paramAttrbsMatch(pobj, param.Attributes) {
				// stringToValueStruct works out which representation the value has
				pobj.setParam(param.Param, stringToValueStruct(param.Value))
			}
		}
	}
}
