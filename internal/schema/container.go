package schema

import "strings"

// containerPrefixes are the single-argument generic containers expanded into
// sequences. List and Set are deliberately not distinguished.
var containerPrefixes = []string{
	"List<",
	"Set<",
	"java.util.List<",
	"java.util.Set<",
}

// containerElem returns the type argument text of a List<T> or Set<T> reference.
// The argument spans from the first '<' to the last '>', so nested generics
// are passed through whole.
func containerElem(name string) (string, bool) {
	if !strings.HasSuffix(name, ">") {
		return "", false
	}
	for _, prefix := range containerPrefixes {
		if strings.HasPrefix(name, prefix) {
			lt := strings.IndexByte(name, '<')
			gt := strings.LastIndexByte(name, '>')
			return strings.TrimSpace(name[lt+1 : gt]), true
		}
	}
	return "", false
}

// envelopeElem unwraps a single-argument response envelope such as
// ResponseEntity<T>. wrappers lists the envelope type names.
func envelopeElem(name string, wrappers []string) (string, bool) {
	if !strings.HasSuffix(name, ">") {
		return "", false
	}
	for _, w := range wrappers {
		if strings.HasPrefix(name, w+"<") {
			lt := strings.IndexByte(name, '<')
			gt := strings.LastIndexByte(name, '>')
			return strings.TrimSpace(name[lt+1 : gt]), true
		}
	}
	return "", false
}
