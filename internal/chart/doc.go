// Package chart provides in-process chart surfaces for the renderer.
//
// Memory keeps the drawn lines in a map and notifies observers of every
// change; RenderPNG draws a snapshot of those lines as an image.
package chart
