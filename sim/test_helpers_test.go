package sim

// newServers builds a server pool with ids assigned by input order.
// Latencies are in ms; every weight is 1.
func newServers(names []string, latencies []int64) []Server {
	servers := make([]Server, len(names))
	for i, name := range names {
		servers[i] = Server{ID: i, Name: name, BaseLatencyMs: latencies[i], Weight: 1}
	}
	return servers
}

func assignedNames(r *RunResult) []string {
	names := make([]string, len(r.Assignments))
	for i, a := range r.Assignments {
		names[i] = a.ServerName
	}
	return names
}
