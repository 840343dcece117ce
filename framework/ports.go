package framework

import "net"

// AvailablePort finds a free TCP port by binding port zero and immediately releasing
// it. The port could in principle be claimed by something else between the release
// and the service binding it; callers launch the service right away to keep that
// window small.
func AvailablePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
