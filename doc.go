// Package nest is the root of a nested Wayland compositor and the
// protocol libraries it is built from.
//
// The interesting packages live below this one:
//
//   - client and xdg/client implement the client side of the core and
//     xdg-shell protocols.
//   - server and xdg/server implement the server side, with the
//     compositor package turning them into an actual compositor.
//   - present renders compositor windows onto a software canvas.
//   - wire and shm hold the protocol plumbing that both sides share.
//
// cmd/nestd ties these together into a runnable compositor.
package nest
