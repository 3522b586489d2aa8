package protocol

// Method is the closed set of JSON-RPC methods the product search endpoint serves.
type Method int

const (
	MethodUnknown Method = iota
	MethodInitialize
	MethodToolsList
	MethodToolsCall
	MethodResourcesList
	MethodResourcesRead
)

var methodNames = map[Method]string{
	MethodInitialize:    "initialize",
	MethodToolsList:     "tools/list",
	MethodToolsCall:     "tools/call",
	MethodResourcesList: "resources/list",
	MethodResourcesRead: "resources/read",
}

var methodsByName = func() map[string]Method {
	m := make(map[string]Method, len(methodNames))
	for k, v := range methodNames {
		m[v] = k
	}
	return m
}()

// ParseMethod maps a wire method name onto a Method.
func ParseMethod(name string) (Method, bool) {
	m, ok := methodsByName[name]
	return m, ok
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}
