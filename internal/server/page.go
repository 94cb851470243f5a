// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

// pageTemplate renders the chat page from a pageData. Message HTML is
// pre-escaped by the render package.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  {{- if .Refresh}}
  <meta http-equiv="refresh" content="{{.Refresh}}">
  {{- end}}
  <title>chatdock</title>
  <link rel="stylesheet" href="/assets/app.css">
</head>
<body>
<div class="container">
  <header><h1>chatdock</h1><a class="export" href="/export?format=html">Export</a></header>
  <div id="chat-container">
    {{- if .ShowUploadPrompt}}
    <form class="upload-pdf-con" action="/upload" method="post" enctype="multipart/form-data">
      <label for="file-upload">Upload PDF File Here</label>
      <input type="file" id="file-upload" name="file" accept="{{.Accept}}" required>
      <button type="submit">Upload</button>
    </form>
    {{- end}}
    {{- range .Messages}}
    <div class="message {{.Role}}">{{.HTML}}</div>
    {{- end}}
    {{- if .Loading}}
    <div class="message assistant loading"><span class="dots"><span></span><span></span><span></span></span></div>
    {{- end}}
  </div>
  {{- if .LastError}}
  <div class="error">{{.LastError}}</div>
  {{- end}}
  <div id="input-container">
    <form class="send-form" action="/send" method="post">
      <input type="text" id="user-input" name="message" placeholder="Hi! Ask me anything..." autocomplete="off"{{if .Loading}} disabled{{else}} autofocus{{end}}>
      <button id="send-button" type="submit"{{if .Loading}} disabled{{end}}>Send</button>
    </form>
    {{- if not .PDFOnly}}
    <form action="/modal/open" method="post">
      <button id="file-upload-label" type="submit" title="Upload"{{if .Loading}} disabled{{end}}>+</button>
    </form>
    {{- end}}
  </div>
  {{- if .ModalOpen}}
  <div class="overlay">
    <div class="modal">
      <h2>Select an Option</h2>
      <form action="/upload" method="post" enctype="multipart/form-data">
        <input type="file" name="file" accept="{{.Accept}}" required>
        <button type="submit">Upload File</button>
      </form>
      <form action="/camera/open" method="post"><button type="submit">Use Camera</button></form>
      <form action="/modal/close" method="post"><button type="submit">Close</button></form>
    </div>
  </div>
  {{- end}}
  {{- if .CameraOpen}}
  <div id="camera-capture">
    <video id="camera-preview" autoplay playsinline muted></video>
    <form id="capture-form" action="/capture" method="post">
      <input type="hidden" name="image" id="capture-image">
      <button type="submit" id="capture-button"{{if .Loading}} disabled{{end}}>Capture</button>
    </form>
    <form action="/camera/close" method="post"><button type="submit">Close</button></form>
  </div>
  <script src="/assets/camera.js"></script>
  {{- end}}
</div>
</body>
</html>
`

const appCSS = `body { margin: 0; font-family: system-ui, sans-serif; background: #f5f5f5; color: #1f2937; }
.container { max-width: 760px; margin: 0 auto; min-height: 100vh; display: flex; flex-direction: column; background: #fff; }
header { display: flex; justify-content: space-between; align-items: center; padding: 12px 20px; border-bottom: 1px solid #e5e5e5; }
header h1 { margin: 0; font-size: 1.2rem; color: #7c3aed; }
header .export { font-size: 0.9rem; color: #0891b2; }
#chat-container { flex: 1; overflow-y: auto; padding: 20px; display: flex; flex-direction: column; gap: 12px; }
.message { max-width: 75%; padding: 8px 14px; border-radius: 12px; }
.message p { margin: 4px 0; }
.message img { max-width: 100%; border-radius: 8px; }
.message.user { align-self: flex-end; background: #dbeafe; color: #1e40af; }
.message.assistant { align-self: flex-start; background: #f5f3ff; color: #5b4b8a; }
.dots span { display: inline-block; width: 8px; height: 8px; margin: 0 2px; border-radius: 50%; background: #000; animation: pulse 1s infinite; }
.dots span:nth-child(2) { animation-delay: 0.2s; }
.dots span:nth-child(3) { animation-delay: 0.4s; }
@keyframes pulse { 0%, 100% { opacity: 0.2; } 50% { opacity: 1; } }
.upload-pdf-con { display: flex; flex-direction: column; align-items: center; gap: 8px; padding: 24px; border: 2px dashed #c4b5fd; border-radius: 12px; }
.error { margin: 0 20px; padding: 8px 12px; border-radius: 8px; background: #fee2e2; color: #991b1b; }
#input-container { display: flex; gap: 8px; padding: 12px 20px; border-top: 1px solid #e5e5e5; }
.send-form { flex: 1; display: flex; gap: 8px; }
#user-input { flex: 1; padding: 10px; border: 1px solid #d4d4d4; border-radius: 8px; }
button { padding: 8px 14px; border: none; border-radius: 8px; background: #7c3aed; color: #fff; cursor: pointer; }
button:disabled { background: #d4d4d4; cursor: default; }
.overlay { position: fixed; inset: 0; background: rgba(0, 0, 0, 0.5); display: flex; justify-content: center; align-items: flex-start; }
.modal { margin-top: 60px; width: 300px; padding: 20px; border-radius: 10px; background: #fff; display: flex; flex-direction: column; gap: 10px; }
.modal h2 { margin: 0 0 8px; font-size: 1.1rem; }
#camera-capture { position: absolute; top: 50px; left: 50%; transform: translateX(-50%); padding: 12px; border-radius: 10px; background: #fff; box-shadow: 0 4px 20px rgba(0, 0, 0, 0.3); display: flex; flex-direction: column; gap: 8px; }
#camera-preview { width: 480px; max-width: 90vw; border-radius: 8px; background: #000; }
`

// cameraJS streams the webcam into the preview and, on capture, posts the
// current frame as a JPEG data URL.
const cameraJS = `(function () {
  var video = document.getElementById('camera-preview');
  var form = document.getElementById('capture-form');
  var field = document.getElementById('capture-image');
  if (!video || !form || !navigator.mediaDevices) {
    return;
  }
  var stream = null;
  navigator.mediaDevices.getUserMedia({ video: true, audio: false })
    .then(function (s) { stream = s; video.srcObject = s; })
    .catch(function (err) { console.error('camera unavailable:', err); });

  form.addEventListener('submit', function (ev) {
    if (!stream || !video.videoWidth) {
      ev.preventDefault();
      return;
    }
    var canvas = document.createElement('canvas');
    canvas.width = video.videoWidth;
    canvas.height = video.videoHeight;
    canvas.getContext('2d').drawImage(video, 0, 0);
    field.value = canvas.toDataURL('image/jpeg');
    stream.getTracks().forEach(function (t) { t.stop(); });
  });
})();
`
