package transport

// Version is reported to MCP clients and by `policyrisk --version`. Release
// builds set it with:
//
//	-X github.com/Easy-Infra-Ltd/policyrisk/src/transport.Version=<tag>
var Version = "dev"
